package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Status represents the lifecycle state of a booking
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// AllStatuses lists every known status in lifecycle order.
var AllStatuses = []Status{
	StatusScheduled,
	StatusProcessing,
	StatusCompleted,
	StatusCancelled,
}

// InactiveStatuses do not count against the daily capacity.
var InactiveStatuses = []Status{
	StatusCompleted,
	StatusCancelled,
}

// ActiveStatuses count against the daily capacity and block deletion of
// the referenced vehicle or customer.
var ActiveStatuses = []Status{
	StatusScheduled,
	StatusProcessing,
}

var ErrUnknownStatus = errors.New("domain: unknown booking status")

// ParseStatus converts a raw value into one of the four known statuses.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsActive reports whether a booking in this status occupies capacity.
func (s Status) IsActive() bool {
	return s == StatusScheduled || s == StatusProcessing
}

// IsTerminal reports whether no further transition is expected from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) String() string {
	return string(s)
}

// StatusPolicy decides which transitions each actor may perform.
//
// Customers may only cancel a scheduled booking. Operators may set any
// known status by default; in strict mode completed and cancelled are
// terminal and only forward transitions are allowed.
type StatusPolicy struct {
	strict bool
}

// NewStatusPolicy returns the permissive policy when strict is false.
func NewStatusPolicy(strict bool) StatusPolicy {
	return StatusPolicy{strict: strict}
}

var strictOperatorTransitions = map[Status][]Status{
	StatusScheduled:  {StatusProcessing, StatusCompleted, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
}

// IsStrict reports whether the terminal-state table is enforced.
func (p StatusPolicy) IsStrict() bool {
	return p.strict
}

// CanCustomerCancel reports whether a customer may cancel a booking in status from.
func (p StatusPolicy) CanCustomerCancel(from Status) bool {
	return from == StatusScheduled
}

// CanOperatorSet reports whether an operator may move a booking from one status to another.
func (p StatusPolicy) CanOperatorSet(from, to Status) bool {
	if !to.IsValid() {
		return false
	}
	if !p.strict {
		return true
	}
	for _, allowed := range strictOperatorTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
