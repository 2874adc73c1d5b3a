package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shoplinehq/shopline-backend/pkg/db/models"
	"github.com/shoplinehq/shopline-backend/pkg/enums"
	"github.com/shoplinehq/shopline-backend/pkg/logger"
)

const defaultCartMaxIdle = 30 * 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CartExpiryJobParams configure the abandoned cart sweeper.
type CartExpiryJobParams struct {
	Logger  *logger.Logger
	DB      txRunner
	MaxIdle time.Duration
}

// cartExpiryJob drops open orders that have seen no cart activity for the
// configured idle window, together with their unordered lines. Settled
// orders and their history are never touched.
type cartExpiryJob struct {
	logg    *logger.Logger
	db      txRunner
	maxIdle time.Duration
	now     func() time.Time
}

// NewCartExpiryJob builds the cron job that expires abandoned carts.
func NewCartExpiryJob(params CartExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	maxIdle := params.MaxIdle
	if maxIdle <= 0 {
		maxIdle = defaultCartMaxIdle
	}
	return &cartExpiryJob{
		logg:    params.Logger,
		db:      params.DB,
		maxIdle: maxIdle,
		now:     time.Now,
	}, nil
}

func (j *cartExpiryJob) Name() string { return "cart-expiry" }

func (j *cartExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().Add(-j.maxIdle)

	var expired int
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		var stale []models.Order
		err := tx.WithContext(ctx).
			Where("status = ?", enums.OrderStatusOpen).
			Where("updated_at < ?", cutoff).
			Where("NOT EXISTS (SELECT 1 FROM order_items WHERE order_items.order_id = orders.id AND order_items.updated_at >= ?)", cutoff).
			Find(&stale).Error
		if err != nil {
			return fmt.Errorf("find stale open orders: %w", err)
		}

		for _, order := range stale {
			if err := tx.WithContext(ctx).
				Where("order_id = ? AND ordered = ?", order.ID, false).
				Delete(&models.OrderItem{}).Error; err != nil {
				return fmt.Errorf("delete cart lines for order %s: %w", order.ID, err)
			}
			result := tx.WithContext(ctx).
				Where("id = ? AND status = ?", order.ID, enums.OrderStatusOpen).
				Delete(&models.Order{})
			if result.Error != nil {
				return fmt.Errorf("delete stale order %s: %w", order.ID, result.Error)
			}
			expired += int(result.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if expired > 0 {
		ctx = j.logg.WithField(ctx, "expired_orders", expired)
		j.logg.Info(ctx, "abandoned carts expired")
	}
	return nil
}
