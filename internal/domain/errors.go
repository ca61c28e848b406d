// Package domain defines domain-specific errors.
// These errors represent engine and session failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that components can return.
var (
	// ErrDisposed is returned when an operation is attempted on a disposed engine or visualizer.
	ErrDisposed = errors.New("component disposed")

	// ErrInvalidViewport is returned when a viewport has a non-positive size or pixel ratio.
	ErrInvalidViewport = errors.New("invalid viewport")

	// ErrNotStarted is returned when an operation requires a running component.
	ErrNotStarted = errors.New("component not started")

	// ErrAlreadyStarted is returned when starting a component twice.
	ErrAlreadyStarted = errors.New("component already started")

	// ErrSourceClosed is returned when reading from a closed voice source.
	ErrSourceClosed = errors.New("voice source closed")

	// ErrUnsupportedFormat is returned when an audio file format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidConfig is returned when configuration values are out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string      // Field that failed validation
	Value   interface{} // Value that failed validation
	Message string      // Error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// SourceError represents an error from a voice level source.
// This wraps decoder and file errors with additional context.
type SourceError struct {
	Op      string // Operation that failed (e.g., "open", "decode", "read")
	Path    string // File path (if applicable)
	Message string // Error message
	Err     error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("voice source %s failed for '%s': %s", e.Op, e.Path, e.Message)
	}
	return fmt.Sprintf("voice source %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError.
func NewSourceError(op, path, message string, err error) *SourceError {
	return &SourceError{
		Op:      op,
		Path:    path,
		Message: message,
		Err:     err,
	}
}

// RenderError represents an error from a presentation surface.
type RenderError struct {
	Op      string // Operation that failed (e.g., "resize", "present")
	Message string // Error message
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// NewRenderError creates a new RenderError.
func NewRenderError(op, message string, err error) *RenderError {
	return &RenderError{
		Op:      op,
		Message: message,
		Err:     err,
	}
}
