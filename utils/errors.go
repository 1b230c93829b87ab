package utils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	pkgerrors "github.com/pkg/errors"
)

// ErrorKind classifies failures for the HTTP layer.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindDependency
	KindUnauthorized
)

var kindNames = map[ErrorKind]string{
	KindInternal:     "internal",
	KindValidation:   "validation",
	KindNotFound:     "not_found",
	KindConflict:     "conflict",
	KindDependency:   "dependency",
	KindUnauthorized: "unauthorized",
}

// Conflicts are reported as 400 to match the published API contract.
var kindStatus = map[ErrorKind]int{
	KindInternal:     fiber.StatusInternalServerError,
	KindValidation:   fiber.StatusBadRequest,
	KindNotFound:     fiber.StatusNotFound,
	KindConflict:     fiber.StatusBadRequest,
	KindDependency:   fiber.StatusBadRequest,
	KindUnauthorized: fiber.StatusUnauthorized,
}

func (k ErrorKind) String() string { return kindNames[k] }

// Status returns the HTTP status code for the kind.
func (k ErrorKind) Status() int { return kindStatus[k] }

// AppError is the error type returned by services.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewDependencyError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindDependency, Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorizedError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// NewInternalError wraps a store or runtime failure, recording the stack.
func NewInternalError(message string, err error) *AppError {
	if err != nil {
		err = pkgerrors.WithStack(err)
	}
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf extracts the kind from any error; unknown errors are internal.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if pkgerrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

func asAppError(err error, target **AppError) bool {
	return pkgerrors.As(err, target)
}
