package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoplinehq/shopline-backend/pkg/db/models"
)

// ItemDTO is the transport shape for a listed product.
type ItemDTO struct {
	ID            uuid.UUID        `json:"id"`
	ShopID        uuid.UUID        `json:"shop_id"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	Inventory     int              `json:"inventory"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CreateItemRequest carries the payload for listing a product.
type CreateItemRequest struct {
	Name          string           `json:"name" validate:"required,min=1"`
	Description   *string          `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price" validate:"required"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	Inventory     int              `json:"inventory" validate:"gte=0"`
}

// UpdateItemRequest carries the mutable listing fields.
type UpdateItemRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	ClearDiscount bool             `json:"clear_discount,omitempty"`
	Inventory     *int             `json:"inventory,omitempty" validate:"omitempty,gte=0"`
}

func FromModel(i *models.Item) *ItemDTO {
	if i == nil {
		return nil
	}
	return &ItemDTO{
		ID:            i.ID,
		ShopID:        i.ShopID,
		Name:          i.Name,
		Description:   i.Description,
		Price:         i.Price,
		DiscountPrice: i.DiscountPrice,
		Inventory:     i.Inventory,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}
