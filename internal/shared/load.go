package shared

import (
	"context"
	"errors"
)

// Status is the lifecycle of a page data load.
type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// FallbackMessage is shown for errors that carry no user-facing text.
const FallbackMessage = "An unexpected error occurred."

// Result is the outcome of one load.
type Result[T any] struct {
	Status Status
	Data   T
	Err    error
}

// Loading returns a result that has not resolved yet.
func Loading[T any]() Result[T] {
	return Result[T]{Status: StatusLoading}
}

// Load runs fn and captures its outcome. Data is left at its zero value on error.
func Load[T any](ctx context.Context, fn func(context.Context) (T, error)) Result[T] {
	data, err := fn(ctx)
	if err != nil {
		var zero T
		return Result[T]{Status: StatusError, Data: zero, Err: err}
	}
	return Result[T]{Status: StatusSuccess, Data: data}
}

// OK reports a successful load.
func (r Result[T]) OK() bool { return r.Status == StatusSuccess }

// Message returns notification text for a failed load.
func (r Result[T]) Message() string {
	if r.Err == nil {
		return ""
	}
	var msg interface{ UserMessage() string }
	if errors.As(r.Err, &msg) {
		return msg.UserMessage()
	}
	return FallbackMessage
}
