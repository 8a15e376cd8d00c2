package internal

// Filter returns a new slice containing only elements that pass the filter.
func Filter[T any](input []T, filter func(T) bool) []T {
	result := make([]T, 0, len(input))
	for _, v := range input {
		if filter(v) {
			result = append(result, v)
		}
	}
	return result
}

// Map returns a new slice with the result of applying mapper to each element.
func Map[T any, U any](input []T, mapper func(T) U) []U {
	result := make([]U, 0, len(input))
	for _, v := range input {
		result = append(result, mapper(v))
	}
	return result
}

// Unique returns the distinct elements of input, keeping first-seen order.
func Unique[T comparable](input []T) []T {
	seen := make(map[T]bool, len(input))
	result := make([]T, 0, len(input))
	for _, v := range input {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
