package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/shoplinehq/shopline-backend/pkg/errors"
)

// Service exposes payment history reads.
type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]PaymentDTO, error)
}

type service struct {
	repo *Repository
}

// NewService wires a payments service with the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]PaymentDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	payments, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	dtos := make([]PaymentDTO, 0, len(payments))
	for i := range payments {
		dtos = append(dtos, *FromModel(&payments[i]))
	}
	return dtos, nil
}
