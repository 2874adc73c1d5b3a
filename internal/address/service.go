package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplinehq/shopline-backend/pkg/db/models"
	pkgerrors "github.com/shoplinehq/shopline-backend/pkg/errors"
)

// Service defines address book operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateAddressRequest) (*AddressDTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
	Get(ctx context.Context, userID, addressID uuid.UUID) (*AddressDTO, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, req UpdateAddressRequest) (*AddressDTO, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
	SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*AddressDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	db txRunner
}

// NewService wires an address service with the provided transaction runner.
func NewService(dbClient txRunner) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("database client required")
	}
	return &service{db: dbClient}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateAddressRequest) (*AddressDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !req.AddressType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid address type")
	}
	if strings.TrimSpace(req.StreetAddress) == "" || strings.TrimSpace(req.City) == "" || strings.TrimSpace(req.Zip) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "street address, city and zip are required")
	}

	addr := &models.Address{
		UserID:        userID,
		AddressType:   req.AddressType,
		StreetAddress: req.StreetAddress,
		Apartment:     req.Apartment,
		City:          req.City,
		Zip:           req.Zip,
	}

	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if req.IsDefault {
			if err := repo.ClearDefault(ctx, userID, req.AddressType); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear default")
			}
			addr.IsDefault = true
		}
		if err := repo.Create(ctx, addr); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return FromModel(addr), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	var dtos []AddressDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		addrs, err := NewRepository(tx).ListByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
		}
		dtos = make([]AddressDTO, 0, len(addrs))
		for i := range addrs {
			dtos = append(dtos, *FromModel(&addrs[i]))
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return dtos, nil
}

func (s *service) Get(ctx context.Context, userID, addressID uuid.UUID) (*AddressDTO, error) {
	var out *AddressDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		addr, err := ownedAddress(ctx, NewRepository(tx), userID, addressID)
		if err != nil {
			return err
		}
		out = FromModel(addr)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, req UpdateAddressRequest) (*AddressDTO, error) {
	var out *AddressDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		addr, err := ownedAddress(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}

		updates := map[string]any{}
		if req.StreetAddress != nil {
			updates["street_address"] = *req.StreetAddress
		}
		if req.Apartment != nil {
			updates["apartment"] = *req.Apartment
		}
		if req.City != nil {
			updates["city"] = *req.City
		}
		if req.Zip != nil {
			updates["zip"] = *req.Zip
		}

		if err := repo.Update(ctx, addr.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update address")
		}
		reloaded, err := repo.FindByID(ctx, addr.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload address")
		}
		out = FromModel(reloaded)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		addr, err := ownedAddress(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, addr.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
		}
		return nil
	})
}

// SetDefault clears the previous default of the same type and flags the target
// in one transaction, so no interleaving can observe two defaults.
func (s *service) SetDefault(ctx context.Context, userID, addressID uuid.UUID) (*AddressDTO, error) {
	var out *AddressDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		addr, err := ownedAddress(ctx, repo, userID, addressID)
		if err != nil {
			return err
		}

		if err := repo.ClearDefault(ctx, userID, addr.AddressType); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear default")
		}
		if err := repo.SetDefault(ctx, addr.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set default")
		}

		reloaded, err := repo.FindByID(ctx, addr.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload address")
		}
		out = FromModel(reloaded)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

// ownedAddress resolves an address and hides rows owned by other users.
func ownedAddress(ctx context.Context, repo *Repository, userID, addressID uuid.UUID) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if addressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address id is required")
	}
	addr, err := repo.FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup address")
	}
	if addr.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return addr, nil
}
