// Package apperr defines the error taxonomy shared by all services.
// Handlers map these types to HTTP statuses; services never touch HTTP codes.
package apperr

import "fmt"

// ValidationError reports missing or malformed input. The operation was not
// attempted.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockError aborts any operation whose decrement would drive a
// stock row negative. The whole enclosing DB transaction must roll back.
type InsufficientStockError struct {
	ProductID string
	OutletID  string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %d, available %d (product %s, outlet %s)",
		e.Requested, e.Available, e.ProductID, e.OutletID)
}

// AuthorizationError reports an acting user whose role or outlet binding does
// not cover the operation. No side effects.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

func Authorization(format string, args ...interface{}) error {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// StateTransitionError reports an illegal transfer status transition.
type StateTransitionError struct {
	From string
	To   string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition from %q to %q", e.From, e.To)
}

// ConflictError reports a uniqueness race (duplicate invoice/transfer number)
// that survived the retry budget, or a referential guard rejecting a delete.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Msg: fmt.Sprintf(format, args...)}
}
