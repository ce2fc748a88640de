// Package errortypes provides classified error types for netsummary.
package errortypes

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// ErrorType represents the class of failure that occurred
type ErrorType string

// Error types
const (
	// ErrorTypeConnectivity covers transport-level failures (DNS, connection
	// refused, timeout expiry) where no HTTP response was received.
	ErrorTypeConnectivity ErrorType = "connectivity"

	// ErrorTypeProtocol covers responses with a non-200 HTTP status.
	ErrorTypeProtocol ErrorType = "protocol"

	// ErrorTypeMalformed covers 200 responses whose body lacks the field the
	// backend adapter requires.
	ErrorTypeMalformed ErrorType = "malformed_response"

	// ErrorTypeEmptyCache is returned when a final report is requested for a
	// session that has no accumulated summaries.
	ErrorTypeEmptyCache ErrorType = "empty_cache"

	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents an application error with context
type AppError struct {
	Err       error
	Type      ErrorType
	Message   string
	StackInfo string
	Fields    map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Err.Error()
}

// Unwrap unwraps the error to support errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithField adds a field to the error for additional context
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// WithFields adds multiple fields to the error for additional context
func (e *AppError) WithFields(fields map[string]interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	for k, v := range fields {
		e.Fields[k] = v
	}
	return e
}

// captureStack captures the stack trace at the call site
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		// Skip testing and standard library frames
		if !strings.Contains(frame.File, "testing/") && !strings.Contains(frame.File, "/go/src/") {
			fmt.Fprintf(&builder, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		}
		if !more {
			break
		}
	}
	return builder.String()
}

// newAppError creates a new AppError with the given type, underlying error, and message
func newAppError(errType ErrorType, err error, message string) *AppError {
	if err == nil {
		err = errors.New("unknown error")
	}

	return &AppError{
		Err:       err,
		Type:      errType,
		Message:   message,
		StackInfo: captureStack(),
		Fields:    make(map[string]interface{}),
	}
}

// ConnectivityError creates a new connectivity error
func ConnectivityError(err error, message string) *AppError {
	return newAppError(ErrorTypeConnectivity, err, message)
}

// ProtocolError creates a new protocol error
func ProtocolError(err error, message string) *AppError {
	return newAppError(ErrorTypeProtocol, err, message)
}

// MalformedResponseError creates a new malformed-response error
func MalformedResponseError(err error, message string) *AppError {
	return newAppError(ErrorTypeMalformed, err, message)
}

// EmptyCacheError creates a new empty-cache error
func EmptyCacheError(err error, message string) *AppError {
	return newAppError(ErrorTypeEmptyCache, err, message)
}

// ValidationError creates a new validation error
func ValidationError(err error, message string) *AppError {
	return newAppError(ErrorTypeValidation, err, message)
}

// DatabaseError creates a new database error
func DatabaseError(err error, message string) *AppError {
	return newAppError(ErrorTypeDatabase, err, message)
}

// ConfigError creates a new configuration error
func ConfigError(err error, message string) *AppError {
	return newAppError(ErrorTypeConfig, err, message)
}

// InternalError creates a new internal error
func InternalError(err error, message string) *AppError {
	return newAppError(ErrorTypeInternal, err, message)
}

// LogError logs an AppError using the provided slog.Logger or the default slog logger.
// It logs the error message, type, stack trace, and any associated fields.
func LogError(logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		// Prepare arguments for structured logging
		args := []any{
			"type", string(appErr.Type),
			"original_error", appErr.Err.Error(),
		}
		if appErr.StackInfo != "" {
			args = append(args, "stack", appErr.StackInfo)
		}
		for k, v := range appErr.Fields {
			args = append(args, k, v)
		}
		logger.Error(appErr.Message, args...)
	} else {
		// For generic errors, log the error message and the error itself
		logger.Error(err.Error(), "error", err)
	}
}

// TypeOf returns the error type of err, or ErrorTypeInternal for plain errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsConnectivityError checks if an error is a connectivity error
func IsConnectivityError(err error) bool {
	return TypeOf(err) == ErrorTypeConnectivity
}

// IsProtocolError checks if an error is a protocol error
func IsProtocolError(err error) bool {
	return TypeOf(err) == ErrorTypeProtocol
}

// IsMalformedResponseError checks if an error is a malformed-response error
func IsMalformedResponseError(err error) bool {
	return TypeOf(err) == ErrorTypeMalformed
}

// IsEmptyCacheError checks if an error is an empty-cache error
func IsEmptyCacheError(err error) bool {
	return TypeOf(err) == ErrorTypeEmptyCache
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return TypeOf(err) == ErrorTypeValidation
}
