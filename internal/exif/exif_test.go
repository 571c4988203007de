package exif

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRejectsNonImages(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("no exif here")))
	assert.Error(t, err)
}

func TestDerivedTags(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
		want []string
	}{
		{
			name: "full camera with gps absent",
			meta: Metadata{Make: "Canon", Model: "EOS R5", DateTimeOriginal: "2024:01:15 14:30:00"},
			want: []string{"make:canon", "model:eos r5", "camera:canon eos r5"},
		},
		{
			name: "gps only",
			meta: Metadata{HasGPS: true},
			want: []string{"gps"},
		},
		{
			name: "make without model",
			meta: Metadata{Make: "Nikon"},
			want: []string{"make:nikon"},
		},
		{
			name: "model without make",
			meta: Metadata{Model: "D850", HasGPS: true},
			want: []string{"model:d850", "gps"},
		},
		{
			name: "empty metadata",
			meta: Metadata{},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meta.DerivedTags())
		})
	}
}

func TestTakenAt(t *testing.T) {
	meta := Metadata{DateTimeOriginal: "2024:01:15 14:30:00"}
	got, ok := meta.TakenAt()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC), got)

	_, ok = (&Metadata{DateTimeOriginal: "15.01.2024 14:30"}).TakenAt()
	assert.False(t, ok)

	_, ok = (&Metadata{}).TakenAt()
	assert.False(t, ok)
}

func TestFieldsOmitAbsent(t *testing.T) {
	meta := Metadata{Make: "Canon", HasGPS: true}
	assert.Equal(t, map[string]any{"make": "Canon", "has_gps": true}, meta.Fields())

	assert.Empty(t, (&Metadata{}).Fields())
}

func TestEmpty(t *testing.T) {
	assert.True(t, (&Metadata{}).Empty())
	assert.False(t, (&Metadata{Make: "Canon"}).Empty())
	assert.False(t, (&Metadata{HasGPS: true}).Empty())
}
