package errors

import (
	"context"
	stderrors "errors"
)

// IsCancellation reports whether err stems from a cancelled or expired context
func IsCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

// CheckContext returns a CANCELLED error if ctx is already done
func CheckContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return Cancelled(operation, err)
	}
	return nil
}

// FromRead classifies an error returned by a repository read. Typed errors
// pass through; context errors become CANCELLED; anything else is STORAGE.
func FromRead(operation string, err error) *Error {
	if err == nil {
		return nil
	}
	if IsCancellation(err) {
		return Cancelled(operation, err)
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return Storage(operation+" failed", err)
}
