// Package models defines the data types shared by the scheduling core and
// its collaborators: jobs, manifests, replica records and stage requests.
package models

// Result is a tagged Ok/Err envelope, used inside the scheduling core to
// mirror the source optimizer's pervasive S_OK/S_ERROR branching without
// resorting to panics for expected, user-visible failure conditions.
// Collaborator interfaces at package boundaries still return plain (T, error)
// — Result is only used where the ported algorithm itself branches on it.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err wraps a failure.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// OK reports whether the result is a success.
func (r Result[T]) OK() bool {
	return r.err == nil
}

// Value returns the wrapped value. Only meaningful when OK() is true.
func (r Result[T]) Value() T {
	return r.value
}

// Error returns the wrapped error. Nil when OK() is true.
func (r Result[T]) Error() error {
	return r.err
}
