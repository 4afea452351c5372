package table

import (
	"context"
	"errors"
)

// ErrDeclined is returned when the user refuses a confirmation prompt. The
// guarded operation performs no network call in that case.
var ErrDeclined = errors.New("declined by user")

// Confirmer gates destructive actions behind an explicit user confirmation.
// Implementations must resolve exactly once per call and must not leave the
// caller suspended; the UI binding (terminal prompt, TUI dialog) is an
// interchangeable adapter behind this interface.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, message string) (bool, error)

// Confirm calls f.
func (f ConfirmerFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// AutoApprove accepts every confirmation, for --yes flows and tests.
var AutoApprove Confirmer = ConfirmerFunc(func(context.Context, string) (bool, error) {
	return true, nil
})
