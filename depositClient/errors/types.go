package errors

import (
	"fmt"
)

// ErrorCode represents different categories of errors
type ErrorCode string

const (
	// ErrCodeInvalidDestinationLength indicates a destination identifier that is not 20 bytes
	ErrCodeInvalidDestinationLength ErrorCode = "INVALID_DESTINATION_LENGTH"

	// ErrCodeEncodingOverflow indicates a message that does not fit the fixed frame
	ErrCodeEncodingOverflow ErrorCode = "ENCODING_OVERFLOW"

	// ErrCodeAmountOverflow indicates a base-unit amount outside the u64 range
	ErrCodeAmountOverflow ErrorCode = "AMOUNT_OVERFLOW"

	// ErrCodeNetworkUnavailable indicates a failed blockhash fetch or account read
	ErrCodeNetworkUnavailable ErrorCode = "NETWORK_UNAVAILABLE"

	// ErrCodeUnresolvedAccount indicates a PDA or token account that could not be derived or found
	ErrCodeUnresolvedAccount ErrorCode = "UNRESOLVED_ACCOUNT"

	// ErrCodeValidation indicates input validation errors
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeConfig indicates configuration errors
	ErrCodeConfig ErrorCode = "CONFIG"

	// ErrCodeInternal indicates programmer errors (unknown instruction, bad account layout)
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Severity represents the severity level of an error
type Severity string

const (
	// SeverityCritical indicates critical errors that require immediate attention
	SeverityCritical Severity = "CRITICAL"

	// SeverityHigh indicates high priority errors
	SeverityHigh Severity = "HIGH"

	// SeverityMedium indicates medium priority errors
	SeverityMedium Severity = "MEDIUM"

	// SeverityLow indicates low priority errors
	SeverityLow Severity = "LOW"
)

// DepositError is the error type returned by every stage of deposit encoding.
type DepositError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Severity Severity               `json:"severity"`
	Cause    error                  `json:"-"`
	Context  map[string]interface{} `json:"context,omitempty"`
}

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrInvalidDestinationLength = &DepositError{Code: ErrCodeInvalidDestinationLength}
	ErrEncodingOverflow         = &DepositError{Code: ErrCodeEncodingOverflow}
	ErrAmountOverflow           = &DepositError{Code: ErrCodeAmountOverflow}
	ErrNetworkUnavailable       = &DepositError{Code: ErrCodeNetworkUnavailable}
	ErrUnresolvedAccount        = &DepositError{Code: ErrCodeUnresolvedAccount}
	ErrValidation               = &DepositError{Code: ErrCodeValidation}
	ErrConfig                   = &DepositError{Code: ErrCodeConfig}
	ErrInternal                 = &DepositError{Code: ErrCodeInternal}
)

// NewDepositError creates a new DepositError
func NewDepositError(code ErrorCode, message string, cause error) *DepositError {
	return &DepositError{
		Code:     code,
		Message:  message,
		Severity: determineSeverity(code),
		Cause:    cause,
		Context:  make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *DepositError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *DepositError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DepositError with the same code.
func (e *DepositError) Is(target error) bool {
	t, ok := target.(*DepositError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithContext adds context to the error
func (e *DepositError) WithContext(key string, value interface{}) *DepositError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// IsRetryable returns true if the error is retryable.
// Only network failures are; unresolved accounts need different inputs first.
func (e *DepositError) IsRetryable() bool {
	return e.Code == ErrCodeNetworkUnavailable
}

func determineSeverity(code ErrorCode) Severity {
	switch code {
	case ErrCodeInternal:
		return SeverityCritical
	case ErrCodeEncodingOverflow, ErrCodeAmountOverflow, ErrCodeInvalidDestinationLength:
		return SeverityHigh
	case ErrCodeNetworkUnavailable, ErrCodeUnresolvedAccount:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Common error constructors

// NewInvalidDestinationLengthError reports a destination that did not decode to 20 bytes
func NewInvalidDestinationLengthError(field string, got int) *DepositError {
	return NewDepositError(ErrCodeInvalidDestinationLength,
		fmt.Sprintf("%s must be 20 bytes, got %d", field, got), nil).
		WithContext("field", field).
		WithContext("length", got)
}

// NewEncodingOverflowError reports a message longer than the fixed frame
func NewEncodingOverflowError(size, frame int) *DepositError {
	return NewDepositError(ErrCodeEncodingOverflow,
		fmt.Sprintf("encoded message is %d bytes, frame is %d", size, frame), nil).
		WithContext("size", size).
		WithContext("frame", frame)
}

// NewAmountOverflowError reports a base-unit amount that does not fit in a u64
func NewAmountOverflowError(message string) *DepositError {
	return NewDepositError(ErrCodeAmountOverflow, message, nil)
}

// NewNetworkError creates a network error
func NewNetworkError(message string, cause error) *DepositError {
	return NewDepositError(ErrCodeNetworkUnavailable, message, cause)
}

// NewUnresolvedAccountError creates an unresolved account error
func NewUnresolvedAccountError(message string, cause error) *DepositError {
	return NewDepositError(ErrCodeUnresolvedAccount, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *DepositError {
	return NewDepositError(ErrCodeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *DepositError {
	return NewDepositError(ErrCodeConfig, message, cause)
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *DepositError {
	return NewDepositError(ErrCodeInternal, message, cause)
}
