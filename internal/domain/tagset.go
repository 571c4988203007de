package domain

// TagSet is an insertion-ordered, deduplicated set of tag names. It is the
// value type consumers see when reading a picture's tags: order is the order
// names were first added, and equality ignores duplicates.
type TagSet struct {
	names []string
	index map[string]struct{}
}

// NewTagSet builds a TagSet from names, dropping duplicates and empty strings
// while preserving first-seen order.
func NewTagSet(names ...string) *TagSet {
	s := &TagSet{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add appends name if it is non-empty and not already present.
// Reports whether the set changed.
func (s *TagSet) Add(name string) bool {
	if name == "" {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[name]; ok {
		return false
	}
	s.index[name] = struct{}{}
	s.names = append(s.names, name)
	return true
}

// Contains reports whether name is in the set.
func (s *TagSet) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns the names in insertion order. The returned slice is a copy.
func (s *TagSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of distinct names.
func (s *TagSet) Len() int {
	return len(s.names)
}

// Equal reports whether both sets contain exactly the same names,
// regardless of insertion order.
func (s *TagSet) Equal(other *TagSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for name := range s.index {
		if !other.Contains(name) {
			return false
		}
	}
	return true
}
