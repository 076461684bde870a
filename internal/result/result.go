// Package result provides a two-variant container for values produced by
// fallible work that completes on another goroutine.
package result

import "github.com/desertthunder/marquee/internal/failure"

// Result holds either a value (Ok) or a classified failure (Err).
// The zero value is an Ok holding the zero T.
type Result[T any] struct {
	value   T
	failure *failure.Failure
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Err wraps a failure. A nil failure is classified as unknown so the
// result is never an Err without a cause.
func Err[T any](f *failure.Failure) Result[T] {
	if f == nil {
		f = failure.NewUnknown(nil)
	}
	return Result[T]{failure: f}
}

// FromPair converts a Go (value, error) pair, classifying the error.
func FromPair[T any](v T, err error) Result[T] {
	if err != nil {
		return Err[T](failure.Classify(err))
	}
	return Ok(v)
}

func (r Result[T]) IsOk() bool {
	return r.failure == nil
}

// Value returns the held value; it is the zero T for an Err.
func (r Result[T]) Value() T {
	return r.value
}

// Failure returns the held failure, or nil for an Ok.
func (r Result[T]) Failure() *failure.Failure {
	return r.failure
}

// Unwrap returns the Go form of the result.
func (r Result[T]) Unwrap() (T, error) {
	if r.failure != nil {
		var zero T
		return zero, r.failure
	}
	return r.value, nil
}

// Fold applies onErr or onOk depending on the variant.
func Fold[T, R any](r Result[T], onErr func(*failure.Failure) R, onOk func(T) R) R {
	if r.failure != nil {
		return onErr(r.failure)
	}
	return onOk(r.value)
}
