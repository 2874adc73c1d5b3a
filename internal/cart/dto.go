package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoplinehq/shopline-backend/pkg/db/models"
)

// LineDTO is the transport shape for a cart line.
type LineDTO struct {
	ID         uuid.UUID       `json:"id"`
	ItemID     uuid.UUID       `json:"item_id"`
	ItemName   string          `json:"item_name,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	FinalPrice decimal.Decimal `json:"final_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// LineFromModel maps a cart line with its loaded item association.
func LineFromModel(line *models.OrderItem) *LineDTO {
	if line == nil {
		return nil
	}
	dto := &LineDTO{
		ID:         line.ID,
		ItemID:     line.ItemID,
		Quantity:   line.Quantity,
		FinalPrice: line.FinalPrice(),
		CreatedAt:  line.CreatedAt,
	}
	if line.Item != nil {
		dto.ItemName = line.Item.Name
		dto.UnitPrice = line.Item.UnitPrice()
	}
	return dto
}
