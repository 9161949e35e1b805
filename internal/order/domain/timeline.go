package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Stage is one milestone in an order's delivery timeline. Stages only ever
// appear in the canonical order below.
type Stage string

const (
	StageCreated      Stage = "created"
	StagePaid         Stage = "paid"
	StageProvisioning Stage = "provisioning"
	StageKickoff      Stage = "kickoff"
	StageDelivery     Stage = "delivery"
)

// CanonicalStages lists every stage in delivery order.
var CanonicalStages = []Stage{StageCreated, StagePaid, StageProvisioning, StageKickoff, StageDelivery}

var stageRank = map[Stage]int{
	StageCreated:      0,
	StagePaid:         1,
	StageProvisioning: 2,
	StageKickoff:      3,
	StageDelivery:     4,
}

var stageLabels = map[Stage]string{
	StageCreated:      "Order placed",
	StagePaid:         "Payment received",
	StageProvisioning: "Provisioning",
	StageKickoff:      "Project kickoff",
	StageDelivery:     "Delivery",
}

// TimelineEntry is one milestone marker in an order's fulfillment history.
type TimelineEntry struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"-"`
	OrderID     snowflake.ID `gorm:"not null;index" json:"-"`
	Stage       Stage        `gorm:"type:text;not null" json:"stage"`
	Label       string       `gorm:"type:text;not null" json:"label"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	Done        bool         `gorm:"not null;default:false" json:"done"`
	Timestamp   *time.Time   `gorm:"column:occurred_at" json:"timestamp,omitempty"`
	Position    int          `gorm:"not null" json:"-"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (TimelineEntry) TableName() string { return "order_timeline" }

// stageForTransition maps a status edge onto the milestone it completes.
// Edges without a canonical milestone (payment failure, retry, cancellation)
// record nothing.
func stageForTransition(from, to Status) (Stage, bool) {
	switch {
	case from == StatusPending && to == StatusProvisioning:
		return StagePaid, true
	case from == StatusProvisioning && (to == StatusActive || to == StatusPaid):
		return StageProvisioning, true
	case to == StatusCompleted:
		return StageDelivery, true
	default:
		return "", false
	}
}

// validateAppend enforces the canonical stage order: a new entry's stage must
// rank strictly after every stage already on the timeline, and a stage can
// appear at most once.
func validateAppend(existing []TimelineEntry, stage Stage) error {
	rank, ok := stageRank[stage]
	if !ok {
		return ErrTimelineOrderViolation
	}
	for _, entry := range existing {
		if entry.Stage == stage {
			return ErrTimelineOrderViolation
		}
		if stageRank[entry.Stage] >= rank {
			return ErrTimelineOrderViolation
		}
	}
	return nil
}

// DonePrefix reports whether the done flags form a non-decreasing prefix of
// the canonical stage sequence (no later stage done while an earlier present
// stage is not).
func DonePrefix(entries []TimelineEntry) bool {
	seenNotDone := false
	for _, entry := range entries {
		if !entry.Done {
			seenNotDone = true
			continue
		}
		if seenNotDone {
			return false
		}
	}
	return true
}
