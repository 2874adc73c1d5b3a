package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplinehq/shopline-backend/pkg/db"
	"github.com/shoplinehq/shopline-backend/pkg/db/models"
	pkgerrors "github.com/shoplinehq/shopline-backend/pkg/errors"
)

// Service defines the cart mutations exposed to controllers.
type Service interface {
	AddToCart(ctx context.Context, userID, itemID uuid.UUID) (*LineDTO, error)
	DecrementOrRemove(ctx context.Context, userID, itemID uuid.UUID) (*LineDTO, error)
	RemoveLine(ctx context.Context, userID, lineID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	db txRunner
}

// NewService wires a cart service with the provided transaction runner.
func NewService(dbClient txRunner) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("database client required")
	}
	return &service{db: dbClient}, nil
}

// AddToCart creates a quantity-1 line on the first add and increments the
// existing line on every repeated add, all inside one transaction.
func (s *service) AddToCart(ctx context.Context, userID, itemID uuid.UUID) (*LineDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	var out *LineDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		item, err := repo.FindItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup item")
		}

		order, err := repo.FindOpenOrder(ctx, userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup open order")
			}
			order, err = repo.CreateOrder(ctx, userID)
			if err != nil {
				if db.IsUniqueViolation(err, "") {
					// Lost a race against a concurrent first add; the winner's
					// order is the one to use.
					order, err = repo.FindOpenOrder(ctx, userID)
				}
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create open order")
				}
			}
		}

		line, err := repo.FindOpenLine(ctx, userID, itemID)
		switch {
		case err == nil:
			if err := repo.UpdateLineQuantity(ctx, line.ID, line.Quantity+1); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment line")
			}
			line.Quantity++
		case errors.Is(err, gorm.ErrRecordNotFound):
			line = &models.OrderItem{
				OrderID:  &order.ID,
				ItemID:   itemID,
				UserID:   userID,
				Quantity: 1,
				Item:     item,
			}
			if err := repo.CreateLine(ctx, line); err != nil {
				if db.IsUniqueViolation(err, "") {
					return pkgerrors.New(pkgerrors.CodeConflict, "cart line already exists")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create line")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup line")
		}

		if line.Item == nil {
			line.Item = item
		}
		out = LineFromModel(line)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

// DecrementOrRemove lowers the quantity by one and deletes the line when the
// quantity would reach zero. Returns nil when the line was removed.
func (s *service) DecrementOrRemove(ctx context.Context, userID, itemID uuid.UUID) (*LineDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	var out *LineDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		if _, err := repo.FindOpenOrder(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "no active order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup open order")
		}

		line, err := repo.FindOpenLine(ctx, userID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "item not in cart")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup line")
		}

		if line.Quantity > 1 {
			if err := repo.UpdateLineQuantity(ctx, line.ID, line.Quantity-1); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement line")
			}
			line.Quantity--
			out = LineFromModel(line)
			return nil
		}

		if err := repo.DeleteLine(ctx, line.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete line")
		}
		out = nil
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

// RemoveLine deletes a cart line by primary key. Lines owned by other users
// and already-settled lines read as missing.
func (s *service) RemoveLine(ctx context.Context, userID, lineID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if lineID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order item id is required")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		line, err := repo.FindLineByID(ctx, lineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup line")
		}
		if line.UserID != userID || line.Ordered {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}

		if err := repo.DeleteLine(ctx, line.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete line")
		}
		return nil
	})
}
