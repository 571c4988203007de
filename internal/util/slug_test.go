package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		// Basic normalization
		{"lowercase", "SUNSET", "sunset"},
		{"spaces to dashes", "golden hour", "golden-hour"},
		{"underscores to dashes", "golden_hour", "golden-hour"},
		{"already normalized", "golden-hour", "golden-hour"},

		// Whitespace handling
		{"trim whitespace", "  beach  ", "beach"},
		{"multiple spaces", "golden   hour", "golden-hour"},
		{"tabs and spaces", "golden\t hour", "golden-hour"},

		// Special characters
		{"punctuation removal", "b&w/film", "bwfilm"},
		{"apostrophe removal", "o'keefe", "okeefe"},
		{"colon kept out", "make:canon", "makecanon"},

		// Dash handling
		{"multiple dashes", "long--exposure", "long-exposure"},
		{"leading dashes", "--macro", "macro"},
		{"trailing dashes", "macro--", "macro"},

		// Edge cases
		{"empty string", "", ""},
		{"only spaces", "   ", ""},
		{"only special chars", "!@#$%", ""},
		{"numbers allowed", "iso100", "iso100"},
		{"mixed case with numbers", "Top 10 Shots", "top-10-shots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slugify(tt.input)
			if result != tt.expected {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeTagName(t *testing.T) {
	if got := NormalizeTagName("  Sunset "); got != "sunset" {
		t.Errorf("NormalizeTagName = %q, want %q", got, "sunset")
	}
}

func TestSlugifyCaseInsensitiveIdentity(t *testing.T) {
	inputs := []string{"Beach", "beach", "  BEACH  ", "beach "}
	want := Slugify(inputs[0])
	for _, in := range inputs {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want identical slug %q", in, got, want)
		}
	}
}
