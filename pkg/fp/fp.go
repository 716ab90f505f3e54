// Package fp provides basic generic functional style functions
package fp

func Contains[T comparable](input []T, value T) bool {
	for _, child := range input {
		if child == value {
			return true
		}
	}

	return false
}
