package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps them to status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	// Both cases look the same to the caller.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrPasswordMismatch is returned when the password confirmation differs.
	ErrPasswordMismatch = errors.New("password confirmation does not match")

	// ErrShareTokenExhausted means no unused share token was found after retrying.
	ErrShareTokenExhausted = errors.New("could not generate a unique share token")
)

// MissingCategoriesError lists every requested category id that does not exist.
// It unwraps to store.ErrCategoryNotFound.
type MissingCategoriesError struct {
	IDs []uuid.UUID
}

// Error implements the error interface.
func (e *MissingCategoriesError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("categories not found: %s", strings.Join(ids, ", "))
}

// Unwrap returns store.ErrCategoryNotFound so callers can treat this as not found.
func (e *MissingCategoriesError) Unwrap() error {
	return store.ErrCategoryNotFound
}

// OperationError wraps an unexpected failure with the service and operation
// that produced it.
type OperationError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for OperationError.
func (e *OperationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *OperationError) Unwrap() error {
	return e.Err
}

// wrapError returns expected errors unchanged and wraps everything else in an
// OperationError. Expected errors are the ones the API layer maps to a
// client-facing status.
func wrapError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if isExpected(err) {
		return err
	}
	return &OperationError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

func isExpected(err error) bool {
	var missing *MissingCategoriesError
	switch {
	case errors.As(err, &missing),
		errors.Is(err, ErrNotOwned),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, domain.ErrValidation),
		store.IsNotFoundError(err),
		store.IsDuplicateError(err):
		return true
	}
	return false
}
