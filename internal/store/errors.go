package store

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidCartLine         = errors.New("invalid cart line")
	ErrInvalidSellerReference  = errors.New("seller profile not found")
	ErrOrderNotFound           = errors.New("order not found")
	ErrAlreadySettled          = errors.New("order already settled")
	ErrEmptySettlement         = errors.New("order has no items to settle")
	ErrInvalidPaymentState     = errors.New("order payment status does not allow settlement")
	ErrNoPlatformAccount       = errors.New("no platform revenue account configured")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrUserNotFound            = errors.New("user not found")
	ErrLedgerImbalance         = errors.New("ledger imbalance")
)

// PersistenceError wraps a failure of the underlying storage. The unit of work
// it belonged to was rolled back, so the operation may be retried as a whole.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failed operation can be attempted again.
func (e *PersistenceError) Retryable() bool {
	return true
}

// IsRetryable reports whether err carries a retryable persistence failure.
func IsRetryable(err error) bool {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return false
}

// IsDomainError reports whether err is one of the input or state sentinels
// rather than a storage failure.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrEmptyCart, ErrInvalidCartLine, ErrInvalidSellerReference, ErrOrderNotFound,
		ErrAlreadySettled, ErrEmptySettlement, ErrInvalidPaymentState, ErrNoPlatformAccount,
		ErrInvalidStatusTransition, ErrUserNotFound, ErrLedgerImbalance,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
