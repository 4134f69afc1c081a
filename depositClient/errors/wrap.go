package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is checks if an error is of a specific type
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As checks if an error can be assigned to a target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// CodeOf returns the code of the first DepositError in the chain, or
// ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var depErr *DepositError
	if errors.As(err, &depErr) {
		return depErr.Code
	}
	return ErrCodeInternal
}

// IsDepositError checks if an error is a DepositError with specific code
func IsDepositError(err error, code ErrorCode) bool {
	var depErr *DepositError
	if errors.As(err, &depErr) {
		return depErr.Code == code
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var depErr *DepositError
	if errors.As(err, &depErr) {
		return depErr.IsRetryable()
	}
	return false
}
