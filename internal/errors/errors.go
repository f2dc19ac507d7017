package errors

import (
	stderrors "errors"
	"fmt"

	"stringcalc/domain/core"
	"stringcalc/domain/instrument"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes
const (
	CodeConfigInvalid  = "CONFIG_INVALID"
	CodeInternalError  = "INTERNAL_ERROR"
	CodeInvalidInput   = "INVALID_INPUT"
	CodeMissingElement = "MISSING_ELEMENT"
	CodeMalformedRow   = "MALFORMED_ROW"
	CodeTransportError = "TRANSPORT_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// MissingElementError names the page elements an operation needed but could
// not find.
type MissingElementError struct {
	*AppError
	IDs []string
}

func (e *MissingElementError) Unwrap() error {
	return e.AppError
}

// MissingElement reports absent element ids. The cause matches
// core.ErrMissingElement.
func MissingElement(ids ...string) *MissingElementError {
	return &MissingElementError{
		AppError: &AppError{
			Code:    CodeMissingElement,
			Message: "required page elements are missing",
			Cause:   core.NewMissingElementError(ids...),
		},
		IDs: ids,
	}
}

// MalformedRow reports a row carrying fewer than instrument.RowWidth fields.
// The cause matches core.ErrMalformedRow.
func MalformedRow(key string, fields int) *AppError {
	return &AppError{
		Code:    CodeMalformedRow,
		Message: "row skipped",
		Cause:   core.NewMalformedRowError(key, fields, instrument.RowWidth),
	}
}

func EmptyRowKey() *AppError {
	return &AppError{
		Code:    CodeMalformedRow,
		Message: "row skipped",
		Cause:   fmt.Errorf("%w: empty row key", core.ErrMalformedRow),
	}
}

func TransportError(cause error) *AppError {
	return &AppError{
		Code:    CodeTransportError,
		Message: "delivery to peer failed",
		Cause:   cause,
	}
}

// MissingIDs returns the element ids carried by a MissingElementError
// anywhere in err's chain.
func MissingIDs(err error) []string {
	var me *MissingElementError
	if stderrors.As(err, &me) {
		return me.IDs
	}
	return nil
}
