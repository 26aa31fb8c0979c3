package storage

import (
	"context"
	"errors"
	"fmt"
)

// Unavailable wraps a backend failure so that errors.Is(err, ErrUnavailable) holds
// while the backend cause stays reachable through errors.Is/As.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// InvalidEvent wraps a per-event content failure so that errors.Is(err, ErrInvalidEvent)
// holds and the backend cause stays reachable.
func InvalidEvent(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrInvalidEvent, op, err)
}

// IsUnavailable reports whether err means the store could not confirm the attempt.
// Context cancellation and deadline errors count: the write may not have committed.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
