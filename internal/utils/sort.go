package utils

import "sort"

// SortedNames returns the keys of a string-keyed map in ascending order, so
// map iteration never leaks into output ordering.
func SortedNames[T any](m map[string]T) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Intersect returns the sorted names present in both maps.
func Intersect[A, B any](a map[string]A, b map[string]B) []string {
	var common []string
	for name := range a {
		if _, ok := b[name]; ok {
			common = append(common, name)
		}
	}
	sort.Strings(common)
	return common
}
