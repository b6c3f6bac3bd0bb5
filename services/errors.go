package services

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	ErrorInvalidInput    ErrorKind = "invalid_input"
	ErrorUnauthenticated ErrorKind = "unauthenticated"
	ErrorForbidden       ErrorKind = "forbidden"
	ErrorStorageFailure  ErrorKind = "storage_failure"
)

// HTTPStatus maps an error kind to its response status.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case ErrorInvalidInput:
		return http.StatusBadRequest
	case ErrorUnauthenticated:
		return http.StatusUnauthorized
	case ErrorForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ServiceError is the only error type services return to handlers.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string { return e.Message }

func (e *ServiceError) Unwrap() error { return e.Err }

func NewInvalidInputError(msg string) error { return &ServiceError{Kind: ErrorInvalidInput, Message: msg} }
func NewForbiddenError(msg string) error    { return &ServiceError{Kind: ErrorForbidden, Message: msg} }

func NewUnauthenticatedError(msg string, cause error) error {
	return &ServiceError{Kind: ErrorUnauthenticated, Message: msg, Err: cause}
}

// NewStorageError wraps a storage error, keeping its message verbatim.
func NewStorageError(err error) error {
	return &ServiceError{Kind: ErrorStorageFailure, Message: err.Error(), Err: err}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// KindOf classifies any error; unknown errors count as storage failures.
func KindOf(err error) ErrorKind {
	if se, ok := AsServiceError(err); ok {
		return se.Kind
	}
	return ErrorStorageFailure
}
