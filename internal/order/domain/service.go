package domain

import (
	"context"
	"errors"
)

// Service exposes the read-side projections. All mutations go through the
// lifecycle coordinator.
type Service interface {
	List(ctx context.Context) (ListOrdersResponse, error)
	GetByID(ctx context.Context, req GetOrderRequest) (*Order, error)
}

type GetOrderRequest struct {
	ID string
}

type ListOrdersResponse struct {
	Orders []Order `json:"orders"`
}

var (
	ErrOrderNotFound          = errors.New("order_not_found")
	ErrInvalidOrderID         = errors.New("invalid_order_id")
	ErrEmptyCart              = errors.New("empty_cart")
	ErrInvalidCurrency        = errors.New("invalid_currency")
	ErrCurrencyMismatch       = errors.New("currency_mismatch")
	ErrInvalidTotal           = errors.New("invalid_total")
	ErrInvalidStatus          = errors.New("invalid_status")
	ErrIllegalTransition      = errors.New("illegal_transition")
	ErrTimelineOrderViolation = errors.New("timeline_order_violation")
	ErrVersionConflict        = errors.New("version_conflict")
)
