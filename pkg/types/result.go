package types

// Status describes the lifecycle phase of an asynchronous operation or a
// live-query emission.
type Status int

// Status values, in lifecycle order.
const (
	StatusPending Status = iota
	StatusInProgress
	StatusSucceeded
	StatusFailed
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in_progress"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is a tagged union over the four operation statuses. A value is
// present only for Succeeded results; an error only for Failed ones.
// The zero value is a Pending result.
type Result[T any] struct {
	status Status
	value  T
	err    error
}

// Pending returns a Result in the pending state.
func Pending[T any]() Result[T] {
	return Result[T]{status: StatusPending}
}

// InProgress returns a Result in the in-progress state.
func InProgress[T any]() Result[T] {
	return Result[T]{status: StatusInProgress}
}

// Succeeded returns a successful Result carrying v.
func Succeeded[T any](v T) Result[T] {
	return Result[T]{status: StatusSucceeded, value: v}
}

// Failed returns a failed Result carrying err.
func Failed[T any](err error) Result[T] {
	return Result[T]{status: StatusFailed, err: err}
}

// Status returns the result's lifecycle phase.
func (r Result[T]) Status() Status {
	return r.status
}

// Value returns the carried value and whether the result succeeded.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.status == StatusSucceeded
}

// Err returns the carried error, or nil if the result did not fail.
func (r Result[T]) Err() error {
	return r.err
}
