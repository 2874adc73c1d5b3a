package coupons

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoplinehq/shopline-backend/pkg/db/models"
)

// CouponDTO is the transport shape for a discount code.
type CouponDTO struct {
	ID        uuid.UUID       `json:"id"`
	Code      string          `json:"code"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateCouponRequest carries the payload for minting a discount code.
type CreateCouponRequest struct {
	Code   string          `json:"code" validate:"required,min=1,max=64"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// UpdateCouponRequest carries the mutable coupon fields.
type UpdateCouponRequest struct {
	Code   *string          `json:"code,omitempty" validate:"omitempty,min=1,max=64"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

func FromModel(c *models.Coupon) *CouponDTO {
	if c == nil {
		return nil
	}
	return &CouponDTO{
		ID:        c.ID,
		Code:      c.Code,
		Amount:    c.Amount,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
