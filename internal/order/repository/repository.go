package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/order/domain"
	"gorm.io/gorm"
)

type gormRepository struct{}

// Provide returns the gorm-backed order repository.
func Provide() orderdomain.Repository {
	return gormRepository{}
}

func (gormRepository) Insert(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Create(order).Error
}

func (gormRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).
		Preload("Lines", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Timeline", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderdomain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (gormRepository) List(ctx context.Context, db *gorm.DB) ([]orderdomain.Order, error) {
	var orders []orderdomain.Order
	err := db.WithContext(ctx).
		Preload("Lines", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Preload("Timeline", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (gormRepository) Update(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	result := db.WithContext(ctx).
		Model(&orderdomain.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]any{
			"status":                 order.Status,
			"cancel_reason":          order.CancelReason,
			"linked_subscription_id": order.LinkedSubscriptionID,
			"version":                order.Version + 1,
			"updated_at":             order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return orderdomain.ErrVersionConflict
	}
	order.Version++
	return nil
}

func (gormRepository) AppendTimeline(ctx context.Context, db *gorm.DB, entry *orderdomain.TimelineEntry) error {
	return db.WithContext(ctx).Create(entry).Error
}
