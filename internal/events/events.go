package events

// Lifecycle event types written to the outbox.
const (
	EventOrderCreated          = "order.created"
	EventOrderPaymentConfirmed = "order.payment_confirmed"
	EventOrderPaymentFailed    = "order.payment_failed"
	EventOrderActivated        = "order.activated"
	EventOrderCompleted        = "order.completed"
	EventOrderCancelled        = "order.cancelled"

	EventSubscriptionActivated     = "subscription.activated"
	EventSubscriptionRenewed       = "subscription.renewed"
	EventSubscriptionRenewalFailed = "subscription.renewal_failed"
	EventSubscriptionCancelled     = "subscription.cancelled"
)

// OrderPayload captures the minimal data downstream consumers need to react
// to an order transition.
type OrderPayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Total   int64  `json:"total,omitempty"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p OrderPayload) ToMap() map[string]any {
	payload := map[string]any{
		"order_id": p.OrderID,
		"status":   p.Status,
	}
	if p.Total != 0 {
		payload["total"] = p.Total
	}
	return payload
}

// SubscriptionPayload captures the minimal data needed to roll up a
// subscription transition.
type SubscriptionPayload struct {
	SubscriptionID  string `json:"subscription_id"`
	OrderID         string `json:"order_id"`
	Status          string `json:"status"`
	NextBillingDate string `json:"next_billing_date,omitempty"`
}

// ToMap converts the payload into an outbox-friendly map.
func (p SubscriptionPayload) ToMap() map[string]any {
	payload := map[string]any{
		"subscription_id": p.SubscriptionID,
		"order_id":        p.OrderID,
		"status":          p.Status,
	}
	if p.NextBillingDate != "" {
		payload["next_billing_date"] = p.NextBillingDate
	}
	return payload
}
