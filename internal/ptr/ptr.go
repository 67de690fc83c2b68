// Package ptr has helpers for pointer-typed optional fields.
package ptr

// Ref returns a pointer to the value passed as argument.
func Ref[T any](v T) *T {
	return &v
}
