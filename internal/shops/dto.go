package shops

import (
	"time"

	"github.com/google/uuid"

	"github.com/shoplinehq/shopline-backend/pkg/db/models"
)

// ShopDTO is the transport shape for a storefront.
type ShopDTO struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateShopDTO holds the data required to persist a new shop.
type CreateShopDTO struct {
	OwnerID     uuid.UUID
	Name        string
	Description *string
}

// UpdateShopDTO carries the mutable storefront fields.
type UpdateShopDTO struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Description *string `json:"description,omitempty"`
}

func FromModel(s *models.Shop) *ShopDTO {
	if s == nil {
		return nil
	}
	return &ShopDTO{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
