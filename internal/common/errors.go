package common

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfiguration for configuration-related errors
	ErrorTypeConfiguration ErrorType = "configuration"
	// ErrorTypeValidation for validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeStorage for the sprint cache database
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeNetwork for transport failures talking to Jira
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeAuth for rejected Jira credentials
	ErrorTypeAuth ErrorType = "auth"
	// ErrorTypeJira for non-success Jira API responses
	ErrorTypeJira ErrorType = "jira"
	// ErrorTypeInternal for inconsistent state inside the aggregation
	ErrorTypeInternal ErrorType = "internal"
)

// CollectorError represents a structured error with context
type CollectorError struct {
	Type      ErrorType              `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Cause     error                  `json:"-"`
}

// Error implements the error interface
func (e *CollectorError) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
	if e.Details != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Details)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface
func (e *CollectorError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *CollectorError) WithContext(key string, value interface{}) *CollectorError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails sets a human readable detail line
func (e *CollectorError) WithDetails(details string) *CollectorError {
	e.Details = details
	return e
}

// NewError creates a new CollectorError
func NewError(errorType ErrorType, code, message string) *CollectorError {
	return &CollectorError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *CollectorError {
	return NewError(ErrorTypeValidation, code, message)
}

// NewJiraError creates a Jira-specific error
func NewJiraError(code, message string) *CollectorError {
	return NewError(ErrorTypeJira, code, message)
}

// NewAuthError creates an authentication error
func NewAuthError(code, message string) *CollectorError {
	return NewError(ErrorTypeAuth, code, message)
}

// NewInternalError creates an internal system error
func NewInternalError(code, message string) *CollectorError {
	return NewError(ErrorTypeInternal, code, message)
}

// WrapError wraps an existing error with CollectorError context
func WrapError(err error, errorType ErrorType, code, message string) *CollectorError {
	return &CollectorError{
		Type:      errorType,
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Cause:     err,
	}
}

// IsErrorType reports whether any error in err's chain is a CollectorError of the given type.
func IsErrorType(err error, errorType ErrorType) bool {
	var ce *CollectorError
	if errors.As(err, &ce) {
		return ce.Type == errorType
	}
	return false
}
