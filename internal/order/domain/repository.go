package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	List(ctx context.Context, db *gorm.DB) ([]Order, error)

	// Update persists status, cancel reason and subscription link, guarded by
	// the order's version. A stale version fails with ErrVersionConflict.
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	AppendTimeline(ctx context.Context, db *gorm.DB, entry *TimelineEntry) error
}
