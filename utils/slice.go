package utils

func Filter[T any](src []T, predicate func(T) bool) []T {
	dst := make([]T, 0, len(src))
	for _, item := range src {
		if predicate(item) {
			dst = append(dst, item)
		}
	}
	return dst
}

func Count[T any](src []T, predicate func(T) bool) int {
	n := 0
	for _, item := range src {
		if predicate(item) {
			n++
		}
	}
	return n
}

func Any[T any](src []T, predicate func(T) bool) bool {
	for _, item := range src {
		if predicate(item) {
			return true
		}
	}
	return false
}

func SumBy[T any](src []T, value func(T) float64) float64 {
	var total float64
	for _, item := range src {
		total += value(item)
	}
	return total
}

func Map[T any, U any](src []T, mapper func(T) U) []U {
	dst := make([]U, 0, len(src))
	for _, item := range src {
		dst = append(dst, mapper(item))
	}
	return dst
}
