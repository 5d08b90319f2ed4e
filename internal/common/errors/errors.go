// Package errors provides the standardized error taxonomy of the notification
// lifecycle controller. None of these errors is fatal to the process.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodePermissionDenied    ErrorCode = "PERMISSION_DENIED"
	ErrCodeTokenFetchFailed    ErrorCode = "TOKEN_FETCH_FAILED"
	ErrCodePresentationFailed  ErrorCode = "PRESENTATION_FAILED"
	ErrCodeUnsupportedPlatform ErrorCode = "UNSUPPORTED_PLATFORM"

	ErrCodeInvalidPayload         ErrorCode = "INVALID_PAYLOAD"
	ErrCodeSubscriptionFailed     ErrorCode = "SUBSCRIPTION_FAILED"
	ErrCodeControllerStopped      ErrorCode = "CONTROLLER_STOPPED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the collaborator error, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any StandardError carrying the same code, so callers can write
// errors.Is(err, ErrUnsupportedPlatform).
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrPermissionDenied    = &StandardError{Code: ErrCodePermissionDenied, Message: "Notification permission denied"}
	ErrTokenFetchFailed    = &StandardError{Code: ErrCodeTokenFetchFailed, Message: "Registration token fetch failed"}
	ErrPresentationFailed  = &StandardError{Code: ErrCodePresentationFailed, Message: "Presentation command failed"}
	ErrUnsupportedPlatform = &StandardError{Code: ErrCodeUnsupportedPlatform, Message: "Platform not supported"}
	ErrInvalidPayload      = &StandardError{Code: ErrCodeInvalidPayload, Message: "Invalid push payload"}
	ErrControllerStopped   = &StandardError{Code: ErrCodeControllerStopped, Message: "Lifecycle controller stopped"}
)

// ==========================
// 2. Error Constructors
// ==========================

// NewPermissionDeniedError records a denied authorization outcome.
func NewPermissionDeniedError(status string) *StandardError {
	return &StandardError{
		Code:      ErrCodePermissionDenied,
		Message:   "Notification permission denied",
		Details:   fmt.Sprintf("status: %s", status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTokenFetchFailedError wraps a push service failure. Retryable only by
// explicit user action.
func NewTokenFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTokenFetchFailed,
		Message:   "Registration token fetch failed",
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewPresentationFailedError describes a command the native module or view
// could not render.
func NewPresentationFailedError(command string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePresentationFailed,
		Message:   "Presentation command failed",
		Details:   fmt.Sprintf("command: %s, error: %s", command, errDetails(err)),
		Retryable: false,
		Metadata:  map[string]interface{}{"command": command},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewUnsupportedPlatformError is returned by the simulation harness when no
// native presentation module exists.
func NewUnsupportedPlatformError(platform string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsupportedPlatform,
		Message:   "Call simulation is only available where the native module exists",
		Details:   fmt.Sprintf("platform: %s", platform),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPayloadError rejects a raw payload that failed schema validation.
func NewInvalidPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPayload,
		Message:   "Invalid push payload",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubscriptionFailedError reports a listener that could not be registered.
func NewSubscriptionFailedError(source string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubscriptionFailed,
		Message:   "Event source subscription failed",
		Details:   fmt.Sprintf("source: %s, error: %s", source, errDetails(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewControllerStoppedError is returned for work submitted after teardown.
func NewControllerStoppedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeControllerStopped,
		Message:   "Lifecycle controller stopped",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError wraps an upstream send failure in the
// push-sender tooling.
func NewNotificationSendFailedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Failed to send notification",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, errDetails(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError extracts a StandardError from an error chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsRetryable reports whether err is a StandardError flagged retryable.
func IsRetryable(err error) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Retryable
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PERMISSION"):
		return "AUTHORIZATION"
	case strings.Contains(codeStr, "TOKEN"):
		return "REGISTRATION"
	case strings.Contains(codeStr, "PRESENTATION") || strings.Contains(codeStr, "PLATFORM"):
		return "PRESENTATION"
	case strings.Contains(codeStr, "PAYLOAD") || strings.Contains(codeStr, "SUBSCRIPTION"):
		return "DELIVERY"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
