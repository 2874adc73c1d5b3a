package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shoplinehq/shopline-backend/pkg/enums"
	"gorm.io/gorm"
)

// Address belongs to a user. At most one address per user carries IsDefault;
// the swap happens inside a single transaction in the address service.
type Address struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	AddressType   enums.AddressType `gorm:"column:address_type;not null"`
	StreetAddress string            `gorm:"column:street_address;not null"`
	Apartment     *string           `gorm:"column:apartment"`
	City          string            `gorm:"column:city;not null"`
	Zip           string            `gorm:"column:zip;not null"`
	IsDefault     bool              `gorm:"column:is_default;not null;default:false"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Address) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
