package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplinehq/shopline-backend/pkg/db/models"
	"github.com/shoplinehq/shopline-backend/pkg/enums"
)

// Repository exposes cart line and open order persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindItem loads the catalog item being added.
func (r *Repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindOpenOrder returns the user's open order with lines and coupon preloaded.
func (r *Repository) FindOpenOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
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

// CreateOrder inserts a new open order for the user.
func (r *Repository) CreateOrder(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	order := &models.Order{
		UserID: userID,
		Status: enums.OrderStatusOpen,
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindOpenLine returns the user's live (not yet ordered) line for the item.
func (r *Repository) FindOpenLine(ctx context.Context, userID, itemID uuid.UUID) (*models.OrderItem, error) {
	var line models.OrderItem
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ? AND item_id = ? AND NOT ordered", userID, itemID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindLineByID loads a cart line by primary key.
func (r *Repository) FindLineByID(ctx context.Context, lineID uuid.UUID) (*models.OrderItem, error) {
	var line models.OrderItem
	if err := r.db.WithContext(ctx).First(&line, "id = ?", lineID).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// CreateLine inserts a new cart line.
func (r *Repository) CreateLine(ctx context.Context, line *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// UpdateLineQuantity sets the quantity for a line.
func (r *Repository) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", lineID).
		UpdateColumn("quantity", quantity).Error
}

// DeleteLine removes a cart line.
func (r *Repository) DeleteLine(ctx context.Context, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.OrderItem{}, "id = ?", lineID).Error
}
