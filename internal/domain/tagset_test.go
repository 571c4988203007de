package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagSetDedupPreservesOrder(t *testing.T) {
	s := NewTagSet("sunset", "beach", "sunset", "", "palm")
	assert.Equal(t, []string{"sunset", "beach", "palm"}, s.Names())
	assert.Equal(t, 3, s.Len())
}

func TestTagSetAdd(t *testing.T) {
	s := NewTagSet()
	assert.True(t, s.Add("cat"))
	assert.False(t, s.Add("cat"))
	assert.False(t, s.Add(""))
	assert.True(t, s.Contains("cat"))
	assert.False(t, s.Contains("dog"))
}

func TestTagSetEqualIgnoresOrder(t *testing.T) {
	a := NewTagSet("cat", "tree")
	b := NewTagSet("tree", "cat")
	c := NewTagSet("tree")

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(c))
}

func TestJSONMapMerge(t *testing.T) {
	base := JSONMap{"make": "Canon", "has_gps": true}
	merged := base.Merge(JSONMap{"model": "EOS R5", "make": "Canon Inc."})

	assert.Equal(t, "Canon Inc.", merged["make"])
	assert.Equal(t, "EOS R5", merged["model"])
	assert.Equal(t, true, merged["has_gps"])
	// receiver untouched
	assert.Equal(t, "Canon", base["make"])
}
