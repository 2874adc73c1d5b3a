package shops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/shoplinehq/shopline-backend/pkg/errors"
)

// Service defines shop read and vendor management operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*ShopDTO, error)
	GetMine(ctx context.Context, ownerID uuid.UUID) (*ShopDTO, error)
	List(ctx context.Context, limit, offset int) ([]ShopDTO, error)
	UpdateMine(ctx context.Context, ownerID uuid.UUID, req UpdateShopDTO) (*ShopDTO, error)
}

type service struct {
	repo *Repository
}

// NewService wires a shops service with the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shops repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ShopDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop id is required")
	}
	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup shop")
	}
	return FromModel(shop), nil
}

func (s *service) GetMine(ctx context.Context, ownerID uuid.UUID) (*ShopDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	shop, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup shop")
	}
	return FromModel(shop), nil
}

func (s *service) List(ctx context.Context, limit, offset int) ([]ShopDTO, error) {
	shops, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shops")
	}
	dtos := make([]ShopDTO, 0, len(shops))
	for i := range shops {
		dtos = append(dtos, *FromModel(&shops[i]))
	}
	return dtos, nil
}

func (s *service) UpdateMine(ctx context.Context, ownerID uuid.UUID, req UpdateShopDTO) (*ShopDTO, error) {
	shop, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup shop")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop name cannot be empty")
	}
	if err := s.repo.Update(ctx, shop.ID, req); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update shop")
	}
	updated, err := s.repo.FindByID(ctx, shop.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload shop")
	}
	return FromModel(updated), nil
}
