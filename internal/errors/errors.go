package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies a kind of offer-generation failure.
type ErrorCode string

const (
	ErrIngestionFailure ErrorCode = "INGESTION_FAILURE"  // 503
	ErrEmployeeNotFound ErrorCode = "EMPLOYEE_NOT_FOUND" // 404
	ErrNotReady         ErrorCode = "NOT_READY"          // 503
	ErrEmptyIndex       ErrorCode = "EMPTY_INDEX"        // 500
	ErrConfig           ErrorCode = "CONFIG_ERROR"       // 400
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"    // 400
	ErrInternal         ErrorCode = "INTERNAL"           // 500
)

// OfferError is a structured error with code, status, and details.
type OfferError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *OfferError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *OfferError) Unwrap() error { return e.Cause }

// NewIngestionFailure creates a 503 error for a missing or unparseable source.
func NewIngestionFailure(source string, cause error) *OfferError {
	return &OfferError{
		Code:    ErrIngestionFailure,
		Status:  503,
		Message: fmt.Sprintf("ingestion failed for %s", source),
		Details: map[string]any{"source": source},
		Cause:   cause,
	}
}

// NewEmployeeNotFound creates a 404 error when no roster name matches the query.
func NewEmployeeNotFound(query string) *OfferError {
	return &OfferError{
		Code:    ErrEmployeeNotFound,
		Status:  404,
		Message: fmt.Sprintf("employee not found: %q", query),
		Details: map[string]any{"query": query},
	}
}

// NewNotReady creates a 503 error for use before ingestion has completed.
func NewNotReady(what string) *OfferError {
	return &OfferError{
		Code:    ErrNotReady,
		Status:  503,
		Message: fmt.Sprintf("%s is not ready", what),
	}
}

// NewEmptyIndex creates a 500 error when an index is built from zero chunks.
func NewEmptyIndex() *OfferError {
	return &OfferError{
		Code:    ErrEmptyIndex,
		Status:  500,
		Message: "cannot build index from zero chunks",
	}
}

// NewConfig creates a 400 error for invalid configuration values.
func NewConfig(msg string) *OfferError {
	return &OfferError{
		Code:    ErrConfig,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *OfferError {
	return &OfferError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *OfferError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &OfferError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Cause:   err,
	}
}

// Is reports whether err, or anything it wraps, is an OfferError with the given code.
func Is(err error, code ErrorCode) bool {
	var oErr *OfferError
	if stderrors.As(err, &oErr) {
		return oErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first OfferError in err's chain, or ErrInternal.
func CodeOf(err error) ErrorCode {
	var oErr *OfferError
	if stderrors.As(err, &oErr) {
		return oErr.Code
	}
	return ErrInternal
}
