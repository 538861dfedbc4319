package grid

import (
	"sort"
	"strings"
)

// Set is an unordered collection of distinct cells.
// The zero value is an empty set ready for reads; use NewSet before Add.
type Set map[Cell]struct{}

// NewSet builds a set from the given cells.
func NewSet(cells ...Cell) Set {
	s := make(Set, len(cells))
	for _, c := range cells {
		s[c] = struct{}{}
	}
	return s
}

func (s Set) Add(c Cell)    { s[c] = struct{}{} }
func (s Set) Remove(c Cell) { delete(s, c) }
func (s Set) Len() int      { return len(s) }
func (s Set) Empty() bool   { return len(s) == 0 }

// Has reports membership.
func (s Set) Has(c Cell) bool {
	_, ok := s[c]
	return ok
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same cells.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for c := range s {
		if !o.Has(c) {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every cell of s is in o.
func (s Set) SubsetOf(o Set) bool {
	if len(s) > len(o) {
		return false
	}
	for c := range s {
		if !o.Has(c) {
			return false
		}
	}
	return true
}

// Minus returns the cells of s that are not in o.
func (s Set) Minus(o Set) Set {
	out := make(Set, len(s))
	for c := range s {
		if !o.Has(c) {
			out[c] = struct{}{}
		}
	}
	return out
}

// Sorted returns the cells in row-major order.
func (s Set) Sorted() []Cell {
	out := make([]Cell, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func (s Set) String() string {
	parts := make([]string, 0, len(s))
	for _, c := range s.Sorted() {
		parts = append(parts, c.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
