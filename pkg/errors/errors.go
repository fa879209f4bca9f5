package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/jafarshop/marketorders/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist (or is not visible to the caller)
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrConflict is returned when a write collides with a uniqueness guarantee
type ErrConflict struct {
	Resource string
	Key      string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Resource, e.Key)
}

// ErrInvalidStateTransition is returned when an order item cannot move to the requested status
type ErrInvalidStateTransition struct {
	From domain.OrderItemStatus
	To   domain.OrderItemStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// IsNotFound reports whether err (or anything it wraps) is an *ErrNotFound.
func IsNotFound(err error) bool {
	var target *ErrNotFound
	return stderrors.As(err, &target)
}

// IsConflict reports whether err (or anything it wraps) is an *ErrConflict.
func IsConflict(err error) bool {
	var target *ErrConflict
	return stderrors.As(err, &target)
}
