package domain

import "strings"

// Status is the order's position in the fulfillment state machine.
type Status string

const (
	StatusPending       Status = "pending"
	StatusProvisioning  Status = "provisioning"
	StatusActive        Status = "active"
	StatusPaid          Status = "paid"
	StatusPaymentFailed Status = "payment_failed"
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
)

// transitions is the closed edge table. Orders with recurring lines settle on
// active after provisioning; one-off orders settle on paid. completed and
// cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:       {StatusProvisioning, StatusPaymentFailed, StatusCancelled},
	StatusProvisioning:  {StatusActive, StatusPaid, StatusCancelled},
	StatusActive:        {StatusCompleted, StatusCancelled},
	StatusPaid:          {StatusCompleted, StatusCancelled},
	StatusPaymentFailed: {StatusPending, StatusCancelled},
	StatusCompleted:     {},
	StatusCancelled:     {},
}

// ParseStatus maps a wire value onto the closed status set.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := transitions[status]
	return status, ok
}

// Terminal reports whether no further transitions are accepted.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether the edge from s to target is in the table.
func (s Status) CanTransition(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}
