package model

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the booking core. Callers test them with
// errors.Is; implementations wrap them with context.
var (
	// ErrNotFound means the referenced inventory unit or booking does not
	// exist (an inactive restaurant counts as absent).
	ErrNotFound = errors.New("not found")
	// ErrInsufficientInventory means fewer units remain than requested.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	// ErrInvalidRequest covers malformed or out-of-range input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrForbidden means the caller is neither the owner nor an admin.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyCancelled is returned when cancelling a cancelled booking.
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	// ErrPersistence wraps storage failures. The unit of work was rolled back.
	ErrPersistence = errors.New("persistence failure")
)

var (
	ErrInvalidTransition  = fmt.Errorf("%w: status transition not allowed", ErrInvalidRequest)
	ErrCancellationClosed = errors.New("cancellation window has closed")
)

func IsNotFound(err error) bool              { return errors.Is(err, ErrNotFound) }
func IsInsufficientInventory(err error) bool { return errors.Is(err, ErrInsufficientInventory) }
func IsInvalidRequest(err error) bool        { return errors.Is(err, ErrInvalidRequest) }
func IsForbidden(err error) bool             { return errors.Is(err, ErrForbidden) }
func IsAlreadyCancelled(err error) bool      { return errors.Is(err, ErrAlreadyCancelled) }

// IsKnown reports whether err already carries one of the kinds above.
func IsKnown(err error) bool {
	for _, k := range []error{ErrNotFound, ErrInsufficientInventory, ErrInvalidRequest,
		ErrForbidden, ErrAlreadyCancelled, ErrPersistence, ErrCancellationClosed} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

// Persistence wraps err as ErrPersistence unless it already has a kind.
func Persistence(op string, err error) error {
	if err == nil || IsKnown(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
