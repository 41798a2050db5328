package utils

// Set implements a Set for the key type T.
type Set[T comparable] map[T]struct{}

// MakeSet returns an empty Set of the given type. Size is optional, and if given
// will reserve the expected size.
func MakeSet[T comparable](size ...int) Set[T] {
	if len(size) == 0 {
		return make(Set[T])
	}
	return make(Set[T], size[0])
}

// Has returns true if Set s has the given key.
func (s Set[T]) Has(key T) bool {
	_, found := s[key]
	return found
}

// Insert keys into set.
func (s Set[T]) Insert(keys ...T) {
	for _, key := range keys {
		s[key] = struct{}{}
	}
}

// IsPermutation returns whether axes holds each of 0, 1, ..., rank-1 exactly once.
func IsPermutation(axes []int, rank int) bool {
	if len(axes) != rank {
		return false
	}
	seen := MakeSet[int](rank)
	for _, axis := range axes {
		if axis < 0 || axis >= rank || seen.Has(axis) {
			return false
		}
		seen.Insert(axis)
	}
	return true
}

// Iota returns the slice [start, start+1, ..., start+n-1].
func Iota(start, n int) []int {
	if n <= 0 {
		return []int{}
	}
	s := make([]int, n)
	for i := range s {
		s[i] = start + i
	}
	return s
}
