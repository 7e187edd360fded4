// Package sets provides a small generic set used for archive membership.
package sets

// Set holds comparable keys.
type Set[T comparable] map[T]struct{}

func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	s.Add(vals...)
	return s
}

// Add inserts vals and reports how many were not present before.
func (s Set[T]) Add(vals ...T) int {
	added := 0
	for _, v := range vals {
		if _, ok := s[v]; !ok {
			s[v] = struct{}{}
			added++
		}
	}
	return added
}

func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

func (s Set[T]) Len() int { return len(s) }
