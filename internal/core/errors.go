package core

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned by operations the purchasing module does not support.
var ErrNotImplemented = errors.New("not implemented")

// ValidationError reports submitted data that breaks a purchase rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NotFoundError reports an unknown purchase, customer or item id.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError reports an update submitted against a stale purchase version.
type ConflictError struct {
	PurchaseID int
	Expected   int
	Actual     int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("purchase %d was modified concurrently: submitted version %d, current version %d",
		e.PurchaseID, e.Expected, e.Actual)
}

// TransactionError reports a failure to begin or commit a data-store transaction.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return e.Op + " transaction: " + e.Err.Error()
}

func (e *TransactionError) Unwrap() error { return e.Err }

func validationErrorf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
