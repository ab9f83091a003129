package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "wrapped ErrNotFound", err: fmt.Errorf("failed: %w", ErrNotFound), expected: true},
		{name: "ErrUserNotFound", err: ErrUserNotFound, expected: true},
		{name: "ErrTaskNotFound", err: ErrTaskNotFound, expected: true},
		{name: "wrapped ErrTaskNotFound", err: fmt.Errorf("failed to find task: %w", ErrTaskNotFound), expected: true},
		{name: "ErrEmailExists", err: ErrEmailExists, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.expected {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: true},
		{name: "ErrEmailExists", err: ErrEmailExists, expected: true},
		{name: "wrapped ErrEmailExists", err: fmt.Errorf("failed to create user: %w", ErrEmailExists), expected: true},
		{name: "ErrOwnerNotFound", err: ErrOwnerNotFound, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateError(tt.err); got != tt.expected {
				t.Errorf("IsDuplicateError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestOwnerNotFoundIsInvalidEntity(t *testing.T) {
	if !errors.Is(ErrOwnerNotFound, ErrInvalidEntity) {
		t.Error("ErrOwnerNotFound should wrap ErrInvalidEntity")
	}
	if errors.Is(ErrOwnerNotFound, ErrNotFound) {
		t.Error("ErrOwnerNotFound should not be a not-found error")
	}
}

func TestStoreError(t *testing.T) {
	originalErr := errors.New("database connection failed")
	storeErr := NewStoreError("task", "create", "database error", originalErr)

	expected := "create operation on task failed: database error: database connection failed"
	if got := storeErr.Error(); got != expected {
		t.Errorf("StoreError.Error() = %v, want %v", got, expected)
	}

	if !errors.Is(storeErr, originalErr) {
		t.Errorf("errors.Is() not recognizing the wrapped error")
	}

	bare := NewStoreError("user", "delete", "refused", nil)
	if got := bare.Error(); got != "delete operation on user failed: refused" {
		t.Errorf("StoreError.Error() = %v", got)
	}
}
