package util

import "fmt"

// GetOne returns the single element of a slice. It returns an error
// if the slice is empty or has more than one element.
func GetOne[T any](s []T) (T, error) {
	var zero T
	switch len(s) {
	case 0:
		return zero, fmt.Errorf("no element found")
	case 1:
		return s[0], nil
	default:
		return zero, fmt.Errorf("multiple elements found")
	}
}

// FindFirst returns the first element matching predicate and whether one was found.
func FindFirst[T any](s []T, predicate func(T) bool) (T, bool) {
	for _, v := range s {
		if predicate(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}
