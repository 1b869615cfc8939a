package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Host preflight errors
	ErrRuntimeMissing    ErrorCode = "RUNTIME_MISSING"
	ErrDaemonUnreachable ErrorCode = "DAEMON_UNREACHABLE"
	ErrWorkspaceCreate   ErrorCode = "WORKSPACE_CREATE"

	// Fetch and build errors
	ErrFetchFailed ErrorCode = "FETCH_FAILED"
	ErrBuildFailed ErrorCode = "BUILD_FAILED"

	// Session identity errors
	ErrNoMountedKeys    ErrorCode = "NO_MOUNTED_KEYS"
	ErrNoUsableKeyPair  ErrorCode = "NO_USABLE_KEY_PAIR"
	ErrKeyNotRegistered ErrorCode = "KEY_NOT_REGISTERED"
	ErrKeyPromotion     ErrorCode = "KEY_PROMOTION_FAILED"
	ErrTransportConfig  ErrorCode = "TRANSPORT_CONFIG_FAILED"
	ErrDotfilesApply    ErrorCode = "DOTFILES_APPLY_FAILED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
)

// DevcError represents a structured error with code and details.
// Fatal steps attach operator remediation text under the "remediation"
// detail key so the CLI can print actionable guidance, not just a code.
type DevcError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DevcError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DevcError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DevcError) Is(target error) bool {
	var targetErr *DevcError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DevcError with the given code and message
func New(code ErrorCode, message string) *DevcError {
	return &DevcError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DevcError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DevcError {
	return &DevcError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DevcError
func Wrap(err error, code ErrorCode, message string) *DevcError {
	if err == nil {
		return nil
	}
	return &DevcError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DevcError {
	if err == nil {
		return nil
	}
	return &DevcError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DevcError) WithDetail(key string, value interface{}) *DevcError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRemediation attaches operator-facing remediation text to the error
func (e *DevcError) WithRemediation(text string) *DevcError {
	return e.WithDetail("remediation", text)
}

// Remediation returns the remediation text attached to an error, or ""
func Remediation(err error) string {
	var devcErr *DevcError
	if errors.As(err, &devcErr) {
		if s, ok := devcErr.Details["remediation"].(string); ok {
			return s
		}
	}
	return ""
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var devcErr *DevcError
	if errors.As(err, &devcErr) {
		return devcErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DevcError
func GetErrorCode(err error) ErrorCode {
	var devcErr *DevcError
	if errors.As(err, &devcErr) {
		return devcErr.Code
	}
	return ErrUnknown
}
