package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*Subscription, error)
	List(ctx context.Context, db *gorm.DB) ([]Subscription, error)

	// Update persists the full mutable state, guarded by the subscription's
	// version. A stale version fails with ErrVersionConflict.
	Update(ctx context.Context, db *gorm.DB, sub *Subscription) error

	// FindDue returns subscriptions whose billing date has passed and which
	// are still renewable, up to limit.
	FindDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]Subscription, error)
}
