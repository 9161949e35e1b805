package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

// BillingPeriod is the recurring billing interval.
type BillingPeriod string

const (
	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodYearly  BillingPeriod = "yearly"
)

// ParseBillingPeriod maps a wire value onto the closed period set.
func ParseBillingPeriod(value string) (BillingPeriod, bool) {
	period := BillingPeriod(strings.ToLower(strings.TrimSpace(value)))
	switch period {
	case BillingPeriodMonthly, BillingPeriodYearly:
		return period, true
	default:
		return "", false
	}
}

// Status is the subscription's billing state.
type Status string

const (
	StatusTrial         Status = "trial"
	StatusActive        Status = "active"
	StatusPastDue       Status = "past_due"
	StatusRenewalFailed Status = "renewal_failed"
	StatusCancelled     Status = "cancelled"
)

// Subscription is the recurring-billing entity derived from an order's
// recurring line. Amount is the per-period charge in minor currency units.
type Subscription struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID snowflake.ID `gorm:"not null;index" json:"order_id"`

	PlanID   string `gorm:"type:text;not null" json:"plan_id"`
	PlanName string `gorm:"type:text;not null" json:"plan_name"`

	BillingPeriod BillingPeriod `gorm:"type:text;not null" json:"billing_period"`
	Status        Status        `gorm:"type:text;not null;default:'active'" json:"status"`

	Amount   int64  `gorm:"not null" json:"amount"`
	Currency string `gorm:"type:text;not null" json:"currency"`

	// NextBillingDate only ever moves forward, one period per successful
	// renewal.
	NextBillingDate time.Time  `gorm:"not null" json:"next_billing_date"`
	TrialEndsAt     *time.Time `gorm:"" json:"trial_ends_at,omitempty"`

	SeatsUsed    int64  `gorm:"not null;default:0" json:"-"`
	SeatsTotal   int64  `gorm:"not null;default:0" json:"-"`
	StorageUsed  int64  `gorm:"not null;default:0" json:"-"`
	StorageTotal int64  `gorm:"not null;default:0" json:"-"`
	StorageUnit  string `gorm:"type:text;not null;default:'GB'" json:"-"`

	CancelReason *string    `gorm:"type:text" json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time `gorm:"" json:"cancelled_at,omitempty"`

	// Version guards concurrent writes; stale updates are rejected.
	Version   int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// NewSubscriptionParams carries the plan snapshot a confirmed order line
// provisions from.
type NewSubscriptionParams struct {
	OrderID  snowflake.ID
	PlanID   string
	PlanName string

	BillingPeriod BillingPeriod
	Amount        int64
	Currency      string
	Trial         bool

	SeatsTotal   int64
	StorageTotal int64
	StorageUnit  string
}

// NewSubscription provisions the recurring entity for a confirmed order. The
// first billing date lands exactly one period out; trial plans carry the same
// date as the trial boundary.
func NewSubscription(genID *snowflake.Node, now time.Time, p NewSubscriptionParams) (*Subscription, error) {
	next, err := addPeriod(now, p.BillingPeriod)
	if err != nil {
		return nil, err
	}

	status := StatusActive
	var trialEndsAt *time.Time
	if p.Trial {
		status = StatusTrial
		boundary := next
		trialEndsAt = &boundary
	}

	unit := strings.TrimSpace(p.StorageUnit)
	if unit == "" {
		unit = "GB"
	}

	return &Subscription{
		ID:              genID.Generate(),
		OrderID:         p.OrderID,
		PlanID:          p.PlanID,
		PlanName:        p.PlanName,
		BillingPeriod:   p.BillingPeriod,
		Status:          status,
		Amount:          p.Amount,
		Currency:        p.Currency,
		NextBillingDate: next,
		TrialEndsAt:     trialEndsAt,
		SeatsTotal:      p.SeatsTotal,
		StorageTotal:    p.StorageTotal,
		StorageUnit:     unit,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// MetricUsage reports consumption against a plan allowance. Exceeding the
// allowance is an overage signal, never an error.
type MetricUsage struct {
	Used      int64 `json:"used"`
	Total     int64 `json:"total"`
	OverLimit bool  `json:"over_limit"`
}

// StorageUsage is MetricUsage plus the display unit.
type StorageUsage struct {
	Used      int64  `json:"used"`
	Total     int64  `json:"total"`
	Unit      string `json:"unit"`
	OverLimit bool   `json:"over_limit"`
}

// Usage is the plan-consumption projection served to the dashboard.
type Usage struct {
	Seats   MetricUsage  `json:"seats"`
	Storage StorageUsage `json:"storage"`
}

// Usage builds the consumption projection from the stored counters.
func (s *Subscription) Usage() Usage {
	return Usage{
		Seats: MetricUsage{
			Used:      s.SeatsUsed,
			Total:     s.SeatsTotal,
			OverLimit: s.SeatsTotal > 0 && s.SeatsUsed > s.SeatsTotal,
		},
		Storage: StorageUsage{
			Used:      s.StorageUsed,
			Total:     s.StorageTotal,
			Unit:      s.StorageUnit,
			OverLimit: s.StorageTotal > 0 && s.StorageUsed > s.StorageTotal,
		},
	}
}

// RecordUsage overwrites the used counters. Overage is accepted and surfaced
// through the returned projection; it is a billing signal, not a rejection.
func (s *Subscription) RecordUsage(seats, storage *int64, now time.Time) Usage {
	if seats != nil {
		s.SeatsUsed = *seats
	}
	if storage != nil {
		s.StorageUsed = *storage
	}
	s.UpdatedAt = now
	return s.Usage()
}

// CanRenew reports whether a renewal attempt is meaningful: every state but
// cancelled is renewable (renewal_failed retries are expected).
func (s *Subscription) CanRenew() bool {
	return s.Status != StatusCancelled
}

// AdvancePeriod applies a successful renewal: the billing date moves forward
// by exactly one period and the subscription settles on active. The date is
// strictly monotonic by construction.
func (s *Subscription) AdvancePeriod(now time.Time) error {
	next, err := addPeriod(s.NextBillingDate, s.BillingPeriod)
	if err != nil {
		return err
	}
	s.NextBillingDate = next
	s.Status = StatusActive
	s.TrialEndsAt = nil
	s.UpdatedAt = now
	return nil
}

// MarkRenewalFailed records a failed renewal without touching the billing
// date, leaving the attempt retryable.
func (s *Subscription) MarkRenewalFailed(now time.Time) {
	s.Status = StatusRenewalFailed
	s.UpdatedAt = now
}

// Cancel terminates the subscription. A missing reason is rejected before any
// mutation; cancelling an already-cancelled subscription reports changed=false
// and succeeds.
func (s *Subscription) Cancel(reason string, now time.Time) (bool, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return false, ErrMissingReason
	}
	if s.Status == StatusCancelled {
		return false, nil
	}
	s.Status = StatusCancelled
	s.CancelReason = &reason
	s.CancelledAt = &now
	s.UpdatedAt = now
	return true, nil
}

func addPeriod(from time.Time, period BillingPeriod) (time.Time, error) {
	switch period {
	case BillingPeriodMonthly:
		return from.AddDate(0, 1, 0), nil
	case BillingPeriodYearly:
		return from.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, ErrInvalidBillingPeriod
	}
}
