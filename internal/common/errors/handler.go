// internal/common/errors/handler.go
package errors

import (
	"time"
)

// Logger is the subset of logger.Logger the handler needs.
type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler normalizes and logs the non-fatal errors of the controller.
type ErrorHandler struct {
	logger Logger
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err under operation and returns its StandardError form. Nil
// errors pass through as nil.
func (h *ErrorHandler) Handle(operation string, err error, fields map[string]interface{}) *StandardError {
	if err == nil {
		return nil
	}
	stdErr := h.normalizeError(err)

	logFields := map[string]interface{}{
		"operation":     operation,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	for k, v := range fields {
		logFields[k] = v
	}

	// Degradations the user can live with are warnings.
	switch stdErr.Code {
	case ErrCodePermissionDenied, ErrCodePresentationFailed, ErrCodeUnsupportedPlatform:
		h.logger.Warn("operation degraded", logFields)
	default:
		h.logger.Error("operation failed", logFields)
	}
	return stdErr
}

func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}
