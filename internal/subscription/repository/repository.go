package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/kalyan-venturemond/venturemond-clientdashboard-sub001/internal/subscription/domain"
	"gorm.io/gorm"
)

type gormRepository struct{}

// Provide returns the gorm-backed subscription repository.
func Provide() subscriptiondomain.Repository {
	return gormRepository{}
}

func (gormRepository) Insert(ctx context.Context, db *gorm.DB, sub *subscriptiondomain.Subscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

func (gormRepository) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*subscriptiondomain.Subscription, error) {
	var sub subscriptiondomain.Subscription
	err := db.WithContext(ctx).First(&sub, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscriptiondomain.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (gormRepository) FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	var sub subscriptiondomain.Subscription
	err := db.WithContext(ctx).First(&sub, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscriptiondomain.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (gormRepository) List(ctx context.Context, db *gorm.DB) ([]subscriptiondomain.Subscription, error) {
	var subs []subscriptiondomain.Subscription
	if err := db.WithContext(ctx).Order("created_at DESC").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (gormRepository) Update(ctx context.Context, db *gorm.DB, sub *subscriptiondomain.Subscription) error {
	result := db.WithContext(ctx).
		Model(&subscriptiondomain.Subscription{}).
		Where("id = ? AND version = ?", sub.ID, sub.Version).
		Updates(map[string]any{
			"status":            sub.Status,
			"next_billing_date": sub.NextBillingDate,
			"trial_ends_at":     sub.TrialEndsAt,
			"seats_used":        sub.SeatsUsed,
			"storage_used":      sub.StorageUsed,
			"cancel_reason":     sub.CancelReason,
			"cancelled_at":      sub.CancelledAt,
			"version":           sub.Version + 1,
			"updated_at":        sub.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return subscriptiondomain.ErrVersionConflict
	}
	sub.Version++
	return nil
}

func (gormRepository) FindDue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]subscriptiondomain.Subscription, error) {
	if limit <= 0 {
		limit = 50
	}
	var subs []subscriptiondomain.Subscription
	err := db.WithContext(ctx).
		Where("status <> ? AND next_billing_date <= ?", subscriptiondomain.StatusCancelled, now).
		Order("next_billing_date ASC").
		Limit(limit).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
