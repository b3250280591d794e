package util

import "fmt"

// GetOne returns the sole element of a map. It errors when the map is empty
// or holds more than one element.
func GetOne[K comparable, T any](m map[K]T) (T, error) {
	var zero T
	switch len(m) {
	case 0:
		return zero, fmt.Errorf("no element found")
	case 1:
		for _, v := range m {
			return v, nil
		}
	}
	return zero, fmt.Errorf("multiple elements found")
}
