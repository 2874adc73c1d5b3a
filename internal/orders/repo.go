package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplinehq/shopline-backend/pkg/db/models"
	"github.com/shoplinehq/shopline-backend/pkg/enums"
)

// Repository exposes order persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindOpenByUser returns the user's open order with lines and coupon preloaded.
func (r *Repository) FindOpenByUser(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Item").
		Preload("Coupon").
		Where("user_id = ? AND status = ?", userID, enums.OrderStatusOpen).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListSettledByUser returns the user's settled orders, newest first.
func (r *Repository) ListSettledByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Item").
		Preload("Coupon").
		Where("user_id = ? AND status = ?", userID, enums.OrderStatusSettled).
		Order("ordered_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// AttachCoupon points the order at the provided coupon, replacing any prior one.
func (r *Repository) AttachCoupon(ctx context.Context, orderID, couponID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("coupon_id", couponID).Error
}

// MarkLinesOrdered flags every line on the order as settled.
func (r *Repository) MarkLinesOrdered(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		UpdateColumn("ordered", true).Error
}

// SettleOrder flips the order to settled with its receipt fields in one update.
func (r *Repository) SettleOrder(ctx context.Context, orderID uuid.UUID, refCode string, paymentID uuid.UUID, billingID, shippingID *uuid.UUID, at time.Time) error {
	updates := map[string]any{
		"status":     enums.OrderStatusSettled,
		"ref_code":   refCode,
		"payment_id": paymentID,
		"ordered_at": at,
	}
	if billingID != nil {
		updates["billing_address_id"] = *billingID
	}
	if shippingID != nil {
		updates["shipping_address_id"] = *shippingID
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}
