package lifecycle

import (
	"context"
	"errors"
)

// ErrGatewayUnavailable signals the charge could not be attempted. The caller
// records the failure as retryable.
var ErrGatewayUnavailable = errors.New("gateway_unavailable")

// ChargeRequest describes a single charge attempt. Amount is in minor
// currency units.
type ChargeRequest struct {
	Reference string
	Amount    int64
	Currency  string
}

// PaymentGateway is the port to the external payment collaborator. The real
// integration lives outside this service; the default implementation approves
// everything so the lifecycle can be exercised end to end.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) error
}

// NoopGateway approves every charge.
type NoopGateway struct{}

func (NoopGateway) Charge(ctx context.Context, req ChargeRequest) error {
	return ctx.Err()
}
