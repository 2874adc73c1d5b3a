package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplinehq/shopline-backend/internal/shops"
	"github.com/shoplinehq/shopline-backend/pkg/db/models"
	pkgerrors "github.com/shoplinehq/shopline-backend/pkg/errors"
)

// Service defines catalog reads plus vendor listing management.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	List(ctx context.Context, limit, offset int) ([]ItemDTO, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]ItemDTO, error)
	Create(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error)
	Update(ctx context.Context, ownerID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error)
	Delete(ctx context.Context, ownerID, itemID uuid.UUID) error
}

type service struct {
	repo  *Repository
	shops *shops.Repository
}

// NewService wires an items service with the provided repositories.
func NewService(repo *Repository, shopRepo *shops.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("items repository required")
	}
	if shopRepo == nil {
		return nil, fmt.Errorf("shops repository required")
	}
	return &service{repo: repo, shops: shopRepo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup item")
	}
	return FromModel(item), nil
}

func (s *service) List(ctx context.Context, limit, offset int) ([]ItemDTO, error) {
	items, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items")
	}
	return toDTOs(items), nil
}

func (s *service) ListByShop(ctx context.Context, shopID uuid.UUID, limit, offset int) ([]ItemDTO, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	items, err := s.repo.ListByShop(ctx, shopID, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shop items")
	}
	return toDTOs(items), nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, req CreateItemRequest) (*ItemDTO, error) {
	shop, err := s.ownedShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if req.DiscountPrice != nil && req.DiscountPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount price cannot be negative")
	}

	item := &models.Item{
		ShopID:        shop.ID,
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Inventory:     req.Inventory,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create item")
	}
	return FromModel(item), nil
}

func (s *service) Update(ctx context.Context, ownerID, itemID uuid.UUID, req UpdateItemRequest) (*ItemDTO, error) {
	item, err := s.ownedItem(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *req.Price
	}
	switch {
	case req.ClearDiscount:
		updates["discount_price"] = nil
	case req.DiscountPrice != nil:
		if req.DiscountPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount price cannot be negative")
		}
		updates["discount_price"] = *req.DiscountPrice
	}
	if req.Inventory != nil {
		if *req.Inventory < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory cannot be negative")
		}
		updates["inventory"] = *req.Inventory
	}

	if err := s.repo.Update(ctx, item.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update item")
	}
	reloaded, err := s.repo.FindByID(ctx, item.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload item")
	}
	return FromModel(reloaded), nil
}

func (s *service) Delete(ctx context.Context, ownerID, itemID uuid.UUID) error {
	item, err := s.ownedItem(ctx, ownerID, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete item")
	}
	return nil
}

func (s *service) ownedShop(ctx context.Context, ownerID uuid.UUID) (*models.Shop, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	shop, err := s.shops.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor shop required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup shop")
	}
	return shop, nil
}

func (s *service) ownedItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.Item, error) {
	shop, err := s.ownedShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup item")
	}
	if item.ShopID != shop.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "item belongs to another shop")
	}
	return item, nil
}

func toDTOs(items []models.Item) []ItemDTO {
	dtos := make([]ItemDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, *FromModel(&items[i]))
	}
	return dtos
}
