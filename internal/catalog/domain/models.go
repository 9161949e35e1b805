package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Item is a purchasable service offering. Recurring offerings carry a billing
// period and spawn a subscription once their order is paid.
type Item struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Code        string       `gorm:"type:text;not null;uniqueIndex" json:"code"`
	Title       string       `gorm:"type:text;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description,omitempty"`

	// UnitPrice is expressed in minor currency units (paise, cents).
	UnitPrice int64  `gorm:"not null" json:"unit_price"`
	Currency  string `gorm:"type:text;not null" json:"currency"`

	// BillingPeriod is empty for one-off deliverables, otherwise
	// "monthly" or "yearly".
	BillingPeriod string `gorm:"type:text" json:"billing_period,omitempty"`
	Trial         bool   `gorm:"not null;default:false" json:"trial"`

	SeatsIncluded   int64  `gorm:"not null;default:0" json:"seats_included"`
	StorageIncluded int64  `gorm:"not null;default:0" json:"storage_included"`
	StorageUnit     string `gorm:"type:text" json:"storage_unit,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Item) TableName() string { return "catalog_items" }

// Recurring reports whether the item bills on a cycle.
func (i Item) Recurring() bool { return i.BillingPeriod != "" }
