package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// Compile-time checks that the interfaces are importable and usable.
func TestLedgerStoreInterfaceExists(t *testing.T) {
	var _ LedgerStore
	var _ LedgerTx
	_ = NewOrderParams{}
	_ = NewTransactionParams{}
}

func TestPersistenceError_UnwrapAndRetryable(t *testing.T) {
	cause := context.DeadlineExceeded
	err := fmt.Errorf("settle order o1: %w", NewPersistenceError("commit", cause))

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected wrapped error to match its cause")
	}

	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected errors.As to find *PersistenceError")
	}
	if pe.Op != "commit" {
		t.Errorf("Expected op commit, got %s", pe.Op)
	}
	if !IsRetryable(err) {
		t.Errorf("Expected persistence failure to be retryable")
	}
	if IsDomainError(err) {
		t.Errorf("Expected persistence failure not to be a domain error")
	}
}

func TestIsRetryable_DomainErrors(t *testing.T) {
	for _, err := range []error{ErrEmptyCart, ErrAlreadySettled, ErrNoPlatformAccount} {
		wrapped := fmt.Errorf("context: %w", err)
		if IsRetryable(wrapped) {
			t.Errorf("Expected %v not to be retryable", err)
		}
		if !IsDomainError(wrapped) {
			t.Errorf("Expected %v to be a domain error", err)
		}
	}
}
