// Package errors provides structured error types for blockprint.
//
// Every error that crosses a package boundary toward the CLI or the HTTP API
// carries a machine-readable [Code]. The CLI prints [UserMessage]; the server
// maps the code's [Class] onto an HTTP status.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unknown format: %s", f)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // handle validation error
//	}
//
//	err = errors.Wrap(errors.ErrCodeNetwork, cause, "build stream from %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidBlueprint Code = "INVALID_BLUEPRINT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidPalette   Code = "INVALID_PALETTE"
	ErrCodeInvalidVizType   Code = "INVALID_VIZ_TYPE"
	ErrCodeInvalidViewport  Code = "INVALID_VIEWPORT"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeBlueprintNotFound Code = "BLUEPRINT_NOT_FOUND"
	ErrCodeFileNotFound      Code = "FILE_NOT_FOUND"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Class groups codes by who is at fault.
type Class uint8

const (
	// ClassInternal is a bug or an unexpected failure. It is also the
	// class of unknown codes.
	ClassInternal Class = iota
	// ClassInvalid means the caller sent something unusable.
	ClassInvalid
	// ClassNotFound means the named resource does not exist.
	ClassNotFound
	// ClassRemote means a collaborator (backend, store) failed.
	ClassRemote
)

var classes = map[Code]Class{
	ErrCodeInvalidInput:      ClassInvalid,
	ErrCodeInvalidBlueprint:  ClassInvalid,
	ErrCodeInvalidFormat:     ClassInvalid,
	ErrCodeInvalidPalette:    ClassInvalid,
	ErrCodeInvalidVizType:    ClassInvalid,
	ErrCodeInvalidViewport:   ClassInvalid,
	ErrCodeInvalidPath:       ClassInvalid,
	ErrCodeUnsupported:       ClassInvalid,
	ErrCodeNotFound:          ClassNotFound,
	ErrCodeBlueprintNotFound: ClassNotFound,
	ErrCodeFileNotFound:      ClassNotFound,
	ErrCodeNetwork:           ClassRemote,
	ErrCodeTimeout:           ClassRemote,
	ErrCodeRateLimited:       ClassRemote,
}

// Class returns the class of c.
func (c Code) Class() Class { return classes[c] }

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error without its code
// and cause, or err.Error() for other errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
