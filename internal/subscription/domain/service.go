package domain

import (
	"context"
	"errors"
)

// Service exposes the read-side projections. All mutations go through the
// lifecycle coordinator.
type Service interface {
	List(ctx context.Context) (ListSubscriptionsResponse, error)
	GetByID(ctx context.Context, req GetSubscriptionRequest) (*Subscription, error)
}

type GetSubscriptionRequest struct {
	ID string
}

// View is a subscription plus its usage projection, the shape the dashboard
// consumes.
type View struct {
	Subscription
	Usage Usage `json:"usage"`
}

// NewView attaches the usage projection.
func NewView(sub Subscription) View {
	return View{Subscription: sub, Usage: sub.Usage()}
}

type ListSubscriptionsResponse struct {
	Subscriptions []View `json:"subscriptions"`
}

var (
	ErrSubscriptionNotFound  = errors.New("subscription_not_found")
	ErrInvalidSubscriptionID = errors.New("invalid_subscription_id")
	ErrInvalidBillingPeriod  = errors.New("invalid_billing_period")
	ErrMissingReason         = errors.New("missing_reason")
	ErrSubscriptionCancelled = errors.New("subscription_cancelled")
	ErrRenewalFailed         = errors.New("renewal_failed")
	ErrVersionConflict       = errors.New("version_conflict")
)
