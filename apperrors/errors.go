// Package apperrors provides coded errors that carry a user-facing message.
package apperrors

import (
	"errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Wizard errors
	CodeSessionMissing        Code = "SESSION_MISSING"
	CodeInvalidPatch          Code = "INVALID_PATCH"
	CodeUnknownJurisdiction   Code = "UNKNOWN_JURISDICTION"
	CodeStepOutOfRange        Code = "STEP_OUT_OF_RANGE"
	CodeStepIncomplete        Code = "STEP_INCOMPLETE"
	CodeLastOwner             Code = "LAST_OWNER"
	CodePersonIndexOutOfRange Code = "PERSON_INDEX_OUT_OF_RANGE"

	// Checkout errors
	CodeCheckoutNotReady     Code = "CHECKOUT_NOT_READY"
	CodeCustomerEmailMissing Code = "CUSTOMER_EMAIL_MISSING"
	CodeOrderSaveFailed      Code = "ORDER_SAVE_FAILED"
	CodePaymentInitFailed    Code = "PAYMENT_INIT_FAILED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps a code to the status a handler should respond with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeSessionMissing:
		return http.StatusUnauthorized
	case CodeInvalidPatch, CodeUnknownJurisdiction, CodeStepOutOfRange, CodeCustomerEmailMissing,
		CodePersonIndexOutOfRange:
		return http.StatusBadRequest
	case CodeStepIncomplete:
		return http.StatusUnprocessableEntity
	case CodeLastOwner, CodeCheckoutNotReady:
		return http.StatusConflict
	case CodeOrderSaveFailed, CodePaymentInitFailed:
		return http.StatusBadGateway
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded error. Message is safe to show to the customer.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates an error with extra context for the response body.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the code from an error chain, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// MessageOf returns the user-facing message of a coded error, or fallback.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
