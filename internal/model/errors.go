// Package model holds the entities of the reservation domain and the error
// kinds shared by every layer.  Errors are raised close to the violated rule
// as wrapped sentinels, e.g. fmt.Errorf("%w: date must be after today",
// ErrValidation), and handlers translate each kind to a stable HTTP status.
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a referenced member, time, theme or reservation that
	// does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAuthorization marks a credential mismatch.
	ErrAuthorization = errors.New("authorization error")
	// ErrForbidden marks an operation on a resource owned by someone else.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict marks a state conflict: duplicate names, a resource still
	// referenced by reservations, or a lost race for the RESERVED slot.
	ErrConflict = errors.New("conflict")
	// ErrPayment is matched by every *PaymentError through errors.Is.
	ErrPayment = errors.New("payment error")
)

// PaymentError is returned when the payment provider rejects or fails to
// authorize a charge.  Status is the HTTP status returned by the provider
// (zero when the provider could not be reached).  Code and Message carry the
// provider's own diagnostic detail.
type PaymentError struct {
	Status  int
	Code    string
	Message string
}

func (e *PaymentError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("payment error: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("payment error (%d): %s: %s", e.Status, e.Code, e.Message)
}

// Is reports whether target is ErrPayment.
func (e *PaymentError) Is(target error) bool { return target == ErrPayment }
