package address

import (
	"time"

	"github.com/google/uuid"

	"github.com/shoplinehq/shopline-backend/pkg/db/models"
	"github.com/shoplinehq/shopline-backend/pkg/enums"
)

// AddressDTO is the transport shape for a saved address.
type AddressDTO struct {
	ID            uuid.UUID         `json:"id"`
	AddressType   enums.AddressType `json:"address_type"`
	StreetAddress string            `json:"street_address"`
	Apartment     *string           `json:"apartment,omitempty"`
	City          string            `json:"city"`
	Zip           string            `json:"zip"`
	IsDefault     bool              `json:"is_default"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// CreateAddressRequest carries the payload for saving a new address.
type CreateAddressRequest struct {
	AddressType   enums.AddressType `json:"address_type" validate:"required"`
	StreetAddress string            `json:"street_address" validate:"required"`
	Apartment     *string           `json:"apartment,omitempty"`
	City          string            `json:"city" validate:"required"`
	Zip           string            `json:"zip" validate:"required"`
	IsDefault     bool              `json:"is_default"`
}

// UpdateAddressRequest carries the mutable address fields.
type UpdateAddressRequest struct {
	StreetAddress *string `json:"street_address,omitempty" validate:"omitempty,min=1"`
	Apartment     *string `json:"apartment,omitempty"`
	City          *string `json:"city,omitempty" validate:"omitempty,min=1"`
	Zip           *string `json:"zip,omitempty" validate:"omitempty,min=1"`
}

func FromModel(a *models.Address) *AddressDTO {
	if a == nil {
		return nil
	}
	return &AddressDTO{
		ID:            a.ID,
		AddressType:   a.AddressType,
		StreetAddress: a.StreetAddress,
		Apartment:     a.Apartment,
		City:          a.City,
		Zip:           a.Zip,
		IsDefault:     a.IsDefault,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
