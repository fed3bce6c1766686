package lang

// Set is an ordered collection of canonical language codes. Build one with Aliases.Set.
type Set struct {
	codes []string
	index map[string]struct{}
}

// Contains reports whether the canonical code is in the set.
func (s Set) Contains(code string) bool {
	_, ok := s.index[code]
	return ok
}

// Codes returns the codes in insertion order.
func (s Set) Codes() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// Len returns the number of codes.
func (s Set) Len() int { return len(s.codes) }

// First returns the first code, or "" for an empty set.
func (s Set) First() string {
	if len(s.codes) == 0 {
		return ""
	}
	return s.codes[0]
}
