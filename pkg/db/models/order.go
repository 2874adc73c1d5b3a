package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shoplinehq/shopline-backend/pkg/enums"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is the per-user cart while open and the immutable receipt once settled.
// A partial unique index on user_id WHERE status = 'open' enforces the single
// open order invariant at the storage layer.
type Order struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID            uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status            enums.OrderStatus `gorm:"column:status;not null;default:'open'"`
	CouponID          *uuid.UUID        `gorm:"column:coupon_id;type:uuid"`
	BillingAddressID  *uuid.UUID        `gorm:"column:billing_address_id;type:uuid"`
	ShippingAddressID *uuid.UUID        `gorm:"column:shipping_address_id;type:uuid"`
	PaymentID         *uuid.UUID        `gorm:"column:payment_id;type:uuid"`
	RefCode           *string           `gorm:"column:ref_code;uniqueIndex"`
	OrderedAt         *time.Time        `gorm:"column:ordered_at"`
	Items             []OrderItem       `gorm:"foreignKey:OrderID"`
	Coupon            *Coupon           `gorm:"foreignKey:CouponID"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Total sums each line's final price and subtracts the coupon amount when one
// is attached. There is deliberately no floor at zero; see the coupon open
// question in DESIGN.md.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].FinalPrice())
	}
	if o.Coupon != nil {
		total = total.Sub(o.Coupon.Amount)
	}
	return total
}
