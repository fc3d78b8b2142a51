// Package cusp structured error types for better error handling
package cusp

import (
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Memory errors
	ErrTypeMemory ErrorType = iota
	// Invalid argument errors
	ErrTypeInvalidArg
	// Execution errors
	ErrTypeExecution
	// Device errors
	ErrTypeDevice
	// Not implemented errors
	ErrTypeNotImplemented
)

// CuspError represents a structured error with context
type CuspError struct {
	Type    ErrorType
	Op      string      // Operation that failed
	Message string      // Human-readable message
	Err     error       // Underlying error if any
	Context interface{} // Additional context
}

// Error implements the error interface
func (e *CuspError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cusp %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("cusp %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *CuspError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeMemory:
		return "Memory"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeExecution:
		return "Execution"
	case ErrTypeDevice:
		return "Device"
	case ErrTypeNotImplemented:
		return "NotImplemented"
	default:
		return "Unknown"
	}
}

// Common error constructors

// NewMemoryError creates a memory-related error
func NewMemoryError(op string, message string, err error) error {
	return &CuspError{
		Type:    ErrTypeMemory,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &CuspError{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
	}
}

// NewDeviceError creates a device-related error
func NewDeviceError(op string, message string) error {
	return &CuspError{
		Type:    ErrTypeDevice,
		Op:      op,
		Message: message,
	}
}

// NewExecutionError creates an execution error
func NewExecutionError(op string, message string, err error) error {
	return &CuspError{
		Type:    ErrTypeExecution,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewNotImplementedError creates an error for a missing code path.
// This is the hard fault class for unsupported matrix formats: it signals
// a code path that does not exist, not a recoverable data condition.
func NewNotImplementedError(op string, format MatrixFormat) error {
	return &CuspError{
		Type:    ErrTypeNotImplemented,
		Op:      op,
		Message: fmt.Sprintf("not implemented for format %s", format),
		Context: format,
	}
}

// Common pre-defined errors

var (
	// ErrOutOfMemory indicates memory allocation failure
	ErrOutOfMemory = NewMemoryError("Malloc", "out of memory", nil)

	// ErrInvalidSize indicates invalid size parameter
	ErrInvalidSize = NewInvalidArgError("Malloc", "size must be positive")

	// ErrNullPointer indicates null pointer access
	ErrNullPointer = NewInvalidArgError("Memory", "null pointer")

	// ErrDoubleFree indicates double free attempt
	ErrDoubleFree = NewMemoryError("Free", "double free detected", nil)

	// ErrInvalidDevice indicates invalid device ID
	ErrInvalidDevice = NewDeviceError("SetDevice", "invalid device ID")

	// ErrDeviceMismatch indicates operands residing on different devices.
	// Use ChangeDeviceTo before mixing them.
	ErrDeviceMismatch = NewDeviceError("Device", "operands reside on different devices")

	// ErrShapeMismatch indicates incompatible matrix dimensions
	ErrShapeMismatch = NewInvalidArgError("Shape", "incompatible matrix dimensions")
)

// IsMemoryError checks if an error is a memory error
func IsMemoryError(err error) bool {
	if e, ok := err.(*CuspError); ok {
		return e.Type == ErrTypeMemory
	}
	return false
}

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool {
	if e, ok := err.(*CuspError); ok {
		return e.Type == ErrTypeInvalidArg
	}
	return false
}

// IsDeviceError checks if an error is a device error
func IsDeviceError(err error) bool {
	if e, ok := err.(*CuspError); ok {
		return e.Type == ErrTypeDevice
	}
	return false
}

// IsNotImplementedError checks if an error is a missing-code-path fault
func IsNotImplementedError(err error) bool {
	if e, ok := err.(*CuspError); ok {
		return e.Type == ErrTypeNotImplemented
	}
	return false
}

// assertFormat panics when a format-restricted accessor is called on a
// matrix in an unsupported format. Precondition violations are programmer
// errors, a different class from runtime data errors, and are fatal.
func assertFormat(op string, got MatrixFormat, want ...MatrixFormat) {
	for _, f := range want {
		if got == f {
			return
		}
	}
	panic(fmt.Sprintf("cusp: %s called on %s matrix", op, got))
}
