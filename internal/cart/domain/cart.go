package domain

import (
	"errors"
	"time"
)

// Line is a priced, quantified unit held in a cart. UnitPrice is in minor
// currency units.
type Line struct {
	ItemID        string `json:"item_id"`
	Title         string `json:"title"`
	UnitPrice     int64  `json:"unit_price"`
	Currency      string `json:"currency"`
	Quantity      int64  `json:"quantity"`
	BillingPeriod string `json:"billing_period,omitempty"`
	Trial         bool   `json:"trial,omitempty"`
}

// Subtotal returns the line amount in minor units.
func (l Line) Subtotal() int64 { return l.UnitPrice * l.Quantity }

// Cart holds a single session's pending lines. At most one line exists per
// item id.
type Cart struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subtotal sums all line amounts.
func (c Cart) Subtotal() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.Subtotal()
	}
	return total
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool { return len(c.Lines) == 0 }

var (
	ErrInvalidSession  = errors.New("invalid_session")
	ErrInvalidItem     = errors.New("invalid_item")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrLineNotFound    = errors.New("line_not_found")
)
