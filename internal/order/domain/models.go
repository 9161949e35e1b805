package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/cart/domain"
)

// BillingSnapshot is the billing identity captured when the order is created.
// It is never mutated afterwards.
type BillingSnapshot struct {
	Name    string `gorm:"column:billing_name;type:text" json:"name"`
	Email   string `gorm:"column:billing_email;type:text" json:"email,omitempty"`
	Address string `gorm:"column:billing_address;type:text" json:"address,omitempty"`
	TaxID   string `gorm:"column:billing_tax_id;type:text" json:"tax_id,omitempty"`
}

// Line is an immutable snapshot of a cart line taken at order creation.
// Amounts are in minor currency units.
type Line struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"-"`
	OrderID snowflake.ID `gorm:"not null;index" json:"-"`

	ItemID        string `gorm:"type:text;not null" json:"item_id"`
	Title         string `gorm:"type:text;not null" json:"title"`
	UnitPrice     int64  `gorm:"not null" json:"unit_price"`
	Currency      string `gorm:"type:text;not null" json:"currency"`
	Quantity      int64  `gorm:"not null" json:"quantity"`
	BillingPeriod string `gorm:"type:text" json:"billing_period,omitempty"`
	Trial         bool   `gorm:"not null;default:false" json:"trial,omitempty"`
	Position      int    `gorm:"not null" json:"-"`
}

// TableName sets the database table name.
func (Line) TableName() string { return "order_lines" }

// Recurring reports whether the line bills on a cycle.
func (l Line) Recurring() bool { return l.BillingPeriod != "" }

// Order is the canonical record of a purchase. All amounts are in minor
// currency units; Total is computed once at creation and never independently
// mutated.
type Order struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	Status       Status          `gorm:"type:text;not null;default:'pending'" json:"status"`
	Currency     string          `gorm:"type:text;not null" json:"currency"`
	Subtotal     int64           `gorm:"not null" json:"subtotal"`
	Discount     int64           `gorm:"not null;default:0" json:"discount"`
	Tax          int64           `gorm:"not null;default:0" json:"tax"`
	Total        int64           `gorm:"not null" json:"total"`
	Billing      BillingSnapshot `gorm:"embedded" json:"billing"`
	CancelReason *string         `gorm:"type:text" json:"cancel_reason,omitempty"`

	LinkedSubscriptionID *snowflake.ID `gorm:"index" json:"linked_subscription_id,omitempty"`

	Lines    []Line          `gorm:"foreignKey:OrderID" json:"lines"`
	Timeline []TimelineEntry `gorm:"foreignKey:OrderID" json:"timeline"`

	// Version guards concurrent writes; stale updates are rejected.
	Version   int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// NewOrder builds a pending order from a cart snapshot. The subtotal is
// recomputed from the lines, discount and tax are supplied by the caller, and
// the created milestone is attached so order and timeline persist as one
// atomic unit.
func NewOrder(genID *snowflake.Node, now time.Time, lines []cartdomain.Line, billing BillingSnapshot, discount, tax int64) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	id := genID.Generate()

	currency := strings.ToUpper(strings.TrimSpace(lines[0].Currency))
	if currency == "" {
		return nil, ErrInvalidCurrency
	}

	var subtotal int64
	orderLines := make([]Line, 0, len(lines))
	for i, line := range lines {
		if !strings.EqualFold(line.Currency, currency) {
			return nil, ErrCurrencyMismatch
		}
		if line.Quantity <= 0 {
			return nil, cartdomain.ErrInvalidQuantity
		}
		subtotal += line.Subtotal()
		orderLines = append(orderLines, Line{
			ID:            genID.Generate(),
			OrderID:       id,
			ItemID:        line.ItemID,
			Title:         line.Title,
			UnitPrice:     line.UnitPrice,
			Currency:      currency,
			Quantity:      line.Quantity,
			BillingPeriod: line.BillingPeriod,
			Trial:         line.Trial,
			Position:      i,
		})
	}

	total := subtotal - discount + tax
	if discount < 0 || tax < 0 || total < 0 {
		return nil, ErrInvalidTotal
	}

	occurredAt := now
	return &Order{
		ID:       id,
		Status:   StatusPending,
		Currency: currency,
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    total,
		Billing:  billing,
		Lines:    orderLines,
		Timeline: []TimelineEntry{{
			ID:        genID.Generate(),
			OrderID:   id,
			Stage:     StageCreated,
			Label:     stageLabels[StageCreated],
			Done:      true,
			Timestamp: &occurredAt,
			Position:  0,
			CreatedAt: now,
		}},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Transition moves the order along one edge of the state machine. When the
// edge completes a canonical milestone the new timeline entry is returned for
// persistence; illegal edges fail with ErrIllegalTransition and mutate
// nothing.
func (o *Order) Transition(target Status, genID *snowflake.Node, now time.Time) (*TimelineEntry, error) {
	if !o.Status.CanTransition(target) {
		return nil, ErrIllegalTransition
	}

	stage, hasStage := stageForTransition(o.Status, target)
	var entry *TimelineEntry
	if hasStage {
		if err := validateAppend(o.Timeline, stage); err != nil {
			return nil, err
		}
		occurredAt := now
		entry = &TimelineEntry{
			ID:        genID.Generate(),
			OrderID:   o.ID,
			Stage:     stage,
			Label:     stageLabels[stage],
			Done:      true,
			Timestamp: &occurredAt,
			Position:  len(o.Timeline),
			CreatedAt: now,
		}
		o.Timeline = append(o.Timeline, *entry)
	}

	o.Status = target
	o.UpdatedAt = now
	return entry, nil
}

// RecordMilestone appends a non-status milestone (kickoff) to the timeline,
// enforcing canonical order.
func (o *Order) RecordMilestone(stage Stage, description string, genID *snowflake.Node, now time.Time) (*TimelineEntry, error) {
	if o.Status.Terminal() {
		return nil, ErrIllegalTransition
	}
	if err := validateAppend(o.Timeline, stage); err != nil {
		return nil, err
	}
	occurredAt := now
	entry := &TimelineEntry{
		ID:          genID.Generate(),
		OrderID:     o.ID,
		Stage:       stage,
		Label:       stageLabels[stage],
		Description: description,
		Done:        true,
		Timestamp:   &occurredAt,
		Position:    len(o.Timeline),
		CreatedAt:   now,
	}
	o.Timeline = append(o.Timeline, *entry)
	o.UpdatedAt = now
	return entry, nil
}

// RecurringLine returns the first line that bills on a cycle, if any.
func (o *Order) RecurringLine() (Line, bool) {
	for _, line := range o.Lines {
		if line.Recurring() {
			return line, true
		}
	}
	return Line{}, false
}

// SoleComponent reports whether the order's only component is the given plan,
// i.e. cancelling that plan's subscription leaves nothing active on the order.
func (o *Order) SoleComponent(planID string) bool {
	return len(o.Lines) == 1 && o.Lines[0].ItemID == planID && o.Lines[0].Recurring()
}
