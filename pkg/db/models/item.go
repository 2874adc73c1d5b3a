package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is a product listed by a shop. DiscountPrice, when set, takes precedence
// over Price in line totals. Inventory is informational; no operation decrements
// it today.
type Item struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ShopID        uuid.UUID        `gorm:"column:shop_id;type:uuid;not null;index"`
	Name          string           `gorm:"column:name;not null"`
	Description   *string          `gorm:"column:description"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPrice *decimal.Decimal `gorm:"column:discount_price;type:numeric(12,2)"`
	Inventory     int              `gorm:"column:inventory;not null;default:0"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *Item) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// UnitPrice returns the effective per-unit price for cart totals.
func (i *Item) UnitPrice() decimal.Decimal {
	if i.DiscountPrice != nil {
		return *i.DiscountPrice
	}
	return i.Price
}
