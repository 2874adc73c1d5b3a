package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderItem is one cart line. A partial unique index on (user_id, item_id)
// WHERE NOT ordered guarantees at most one open line per user and item; the
// migration owns that constraint.
type OrderItem struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID   *uuid.UUID `gorm:"column:order_id;type:uuid;index"`
	ItemID    uuid.UUID  `gorm:"column:item_id;type:uuid;not null"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	Quantity  int        `gorm:"column:quantity;not null;default:1"`
	Ordered   bool       `gorm:"column:ordered;not null;default:false"`
	Item      *Item      `gorm:"foreignKey:ItemID"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *OrderItem) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// FinalPrice is quantity times the item's effective unit price. The Item
// association must be loaded.
func (o *OrderItem) FinalPrice() decimal.Decimal {
	if o.Item == nil {
		return decimal.Zero
	}
	return o.Item.UnitPrice().Mul(decimal.NewFromInt(int64(o.Quantity)))
}
