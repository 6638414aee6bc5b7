package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when the requested status is not
	// reachable from the order's current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrEmptyOrder is returned when confirming an order with no items.
	ErrEmptyOrder = errors.New("order has no items")
	// ErrOrderLocked is returned when mutating an order past DRAFT.
	ErrOrderLocked = errors.New("order is no longer editable")
)

// transitions maps each status to the set of statuses it may move to.
// Terminal statuses have no entry.
var transitions = map[OrderStatus][]OrderStatus{
	StatusDraft:      {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from the given one.
func NextStatuses(from OrderStatus) []OrderStatus {
	next := transitions[from]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// Transition validates the move and returns a descriptive error when the
// machine forbids it. Self transitions are rejected like any other
// undeclared edge.
func Transition(from, to OrderStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Editable reports whether items and header fields may still change.
// Only DRAFT orders are editable.
func Editable(status OrderStatus) bool {
	return status == StatusDraft
}
