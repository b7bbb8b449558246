package compare

import (
	"cmp"
	"maps"
	"slices"
)

// Slices compares two slices for equality using an equality function for elements.
// Returns true if both slices have the same length and all corresponding elements are equal.
//
// Example:
//
//	compare.Slices(field1.Args, field2.Args, func(a, b string) bool { return a == b })
func Slices[T any](a, b []T, equalFunc func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalFunc(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Keys partitions the keys of two maps into those only in b (added), those
// only in a (removed) and those in both (shared). Each result is sorted.
//
// Example:
//
//	added, removed, shared := compare.Keys(modelsA, modelsB)
func Keys[K cmp.Ordered, V1, V2 any](a map[K]V1, b map[K]V2) (added, removed, shared []K) {
	for _, k := range SortedKeys(b) {
		if _, ok := a[k]; !ok {
			added = append(added, k)
		}
	}

	for _, k := range SortedKeys(a) {
		if _, ok := b[k]; ok {
			shared = append(shared, k)
		} else {
			removed = append(removed, k)
		}
	}

	return added, removed, shared
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
