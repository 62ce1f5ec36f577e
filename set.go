package rekodo

import (
	"fmt"
	"sort"
)

// Set is an unordered collection of unique comparable values. It serializes
// under the reserved "__set__" tag as a JSON array with a deterministic order.
type Set struct {
	items map[any]struct{}
}

// NewSet returns a Set holding the given values.
func NewSet(vals ...any) Set {
	s := Set{items: make(map[any]struct{}, len(vals))}
	for _, v := range vals {
		s.items[v] = struct{}{}
	}
	return s
}

// Add inserts v.
func (s Set) Add(v any) { s.items[v] = struct{}{} }

// Remove deletes v if present.
func (s Set) Remove(v any) { delete(s.items, v) }

// Has reports membership of v.
func (s Set) Has(v any) bool {
	_, ok := s.items[v]
	return ok
}

// Len returns the number of elements.
func (s Set) Len() int { return len(s.items) }

// Values returns the elements in a deterministic order.
func (s Set) Values() []any { return sortedValues(s.items) }

// Equal reports whether both sets hold the same elements.
func (s Set) Equal(o Set) bool {
	if len(s.items) != len(o.items) {
		return false
	}
	for v := range s.items {
		if _, ok := o.items[v]; !ok {
			return false
		}
	}
	return true
}

func (s Set) String() string { return fmt.Sprintf("set%v", s.Values()) }

// FrozenSet is the immutable counterpart of Set, serialized under the
// reserved "__frozenset__" tag.
type FrozenSet struct {
	items map[any]struct{}
}

// NewFrozenSet returns a FrozenSet holding the given values.
func NewFrozenSet(vals ...any) FrozenSet {
	f := FrozenSet{items: make(map[any]struct{}, len(vals))}
	for _, v := range vals {
		f.items[v] = struct{}{}
	}
	return f
}

// Has reports membership of v.
func (f FrozenSet) Has(v any) bool {
	_, ok := f.items[v]
	return ok
}

// Len returns the number of elements.
func (f FrozenSet) Len() int { return len(f.items) }

// Values returns the elements in a deterministic order.
func (f FrozenSet) Values() []any { return sortedValues(f.items) }

// Equal reports whether both sets hold the same elements.
func (f FrozenSet) Equal(o FrozenSet) bool {
	if len(f.items) != len(o.items) {
		return false
	}
	for v := range f.items {
		if _, ok := o.items[v]; !ok {
			return false
		}
	}
	return true
}

func (f FrozenSet) String() string { return fmt.Sprintf("frozenset%v", f.Values()) }

// sortedValues orders elements by formatted representation (type name as a
// tie-break) so encoded output is stable across runs.
func sortedValues(items map[any]struct{}) []any {
	out := make([]any, 0, len(items))
	for v := range items {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := fmt.Sprint(out[i]), fmt.Sprint(out[j])
		if si != sj {
			return si < sj
		}
		return fmt.Sprintf("%T", out[i]) < fmt.Sprintf("%T", out[j])
	})
	return out
}
