// Package utils holds small helpers for the optional fields of the ticket
// API, which are modelled as pointers.
package utils

// Value dereferences v, returning the zero value for nil.
func Value[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Ptr returns a pointer to a copy of v, for filling optional fields.
func Ptr[T any](v T) *T {
	return &v
}
