package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoplinehq/shopline-backend/internal/cart"
	"github.com/shoplinehq/shopline-backend/pkg/db/models"
	"github.com/shoplinehq/shopline-backend/pkg/enums"
)

// OrderDTO is the transport shape for an order summary or receipt.
type OrderDTO struct {
	ID                uuid.UUID         `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	Status            enums.OrderStatus `json:"status"`
	Lines             []cart.LineDTO    `json:"lines"`
	CouponCode        *string           `json:"coupon_code,omitempty"`
	CouponAmount      *decimal.Decimal  `json:"coupon_amount,omitempty"`
	Total             decimal.Decimal   `json:"total"`
	RefCode           *string           `json:"ref_code,omitempty"`
	BillingAddressID  *uuid.UUID        `json:"billing_address_id,omitempty"`
	ShippingAddressID *uuid.UUID        `json:"shipping_address_id,omitempty"`
	OrderedAt         *time.Time        `json:"ordered_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// ApplyCouponRequest carries the discount code to attach to the open order.
type ApplyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

// CheckoutRequest optionally pins the addresses used for the settled order.
// When omitted the user's default addresses are used if present.
type CheckoutRequest struct {
	BillingAddressID  *uuid.UUID `json:"billing_address_id,omitempty"`
	ShippingAddressID *uuid.UUID `json:"shipping_address_id,omitempty"`
}

// FromModel maps an order with preloaded lines and coupon.
func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:                o.ID,
		UserID:            o.UserID,
		Status:            o.Status,
		Lines:             make([]cart.LineDTO, 0, len(o.Items)),
		Total:             o.Total(),
		RefCode:           o.RefCode,
		BillingAddressID:  o.BillingAddressID,
		ShippingAddressID: o.ShippingAddressID,
		OrderedAt:         o.OrderedAt,
		CreatedAt:         o.CreatedAt,
	}
	for i := range o.Items {
		dto.Lines = append(dto.Lines, *cart.LineFromModel(&o.Items[i]))
	}
	if o.Coupon != nil {
		code := o.Coupon.Code
		amount := o.Coupon.Amount
		dto.CouponCode = &code
		dto.CouponAmount = &amount
	}
	return dto
}
