// Package setutil provides a small generic set used to collect distinct lookup keys.
package setutil

// Set is a set of comparable values that remembers first-insertion order,
// so IN clauses built from it are deterministic.
type Set[T comparable] struct {
	items map[T]struct{}
	order []T
}

// New creates a set holding the given values.
func New[T comparable](values ...T) *Set[T] {
	s := &Set[T]{items: make(map[T]struct{}, len(values))}
	s.AddAll(values)
	return s
}

// Add adds v to the set.
func (s *Set[T]) Add(v T) {
	if _, ok := s.items[v]; ok {
		return
	}
	s.items[v] = struct{}{}
	s.order = append(s.order, v)
}

// AddAll adds all values to the set.
func (s *Set[T]) AddAll(values []T) {
	for _, v := range values {
		s.Add(v)
	}
}

// Has returns true if v exists in the set.
func (s *Set[T]) Has(v T) bool {
	_, ok := s.items[v]
	return ok
}

// ToSlice returns the values in insertion order.
func (s *Set[T]) ToSlice() []T {
	out := make([]T, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of elements in the set.
func (s *Set[T]) Len() int {
	return len(s.order)
}

// Collect builds a set from the keys produced by key for every item.
func Collect[E any, T comparable](items []E, key func(E) T) *Set[T] {
	s := &Set[T]{items: make(map[T]struct{}, len(items))}
	for _, it := range items {
		s.Add(key(it))
	}
	return s
}
