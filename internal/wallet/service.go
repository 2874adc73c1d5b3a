package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shoplinehq/shopline-backend/pkg/db/models"
	pkgerrors "github.com/shoplinehq/shopline-backend/pkg/errors"
)

// Service defines the wallet operations exposed to controllers.
type Service interface {
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*BalanceDTO, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*BalanceDTO, error)
	Transfer(ctx context.Context, fromUserID uuid.UUID, req TransferRequest) (*TransferDTO, error)
	Balance(ctx context.Context, userID uuid.UUID) (*BalanceDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	db txRunner
}

// NewService wires a wallet service with the provided transaction runner.
func NewService(db txRunner) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database client required")
	}
	return &service{db: db}, nil
}

func (s *service) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*BalanceDTO, error) {
	if err := validateAmount(userID, amount); err != nil {
		return nil, err
	}

	var out *BalanceDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		rows, err := repo.Credit(ctx, userID, amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit balance")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload balance")
		}
		out = &BalanceDTO{UserID: user.ID, Balance: user.Balance}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

func (s *service) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*BalanceDTO, error) {
	if err := validateAmount(userID, amount); err != nil {
		return nil, err
	}

	var out *BalanceDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		rows, err := repo.DebitIfSufficient(ctx, userID, amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debit balance")
		}
		if rows == 0 {
			return classifyDebitFailure(ctx, repo, userID)
		}
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload balance")
		}
		out = &BalanceDTO{UserID: user.ID, Balance: user.Balance}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

func (s *service) Transfer(ctx context.Context, fromUserID uuid.UUID, req TransferRequest) (*TransferDTO, error) {
	if err := validateAmount(fromUserID, req.Amount); err != nil {
		return nil, err
	}
	toUsername := strings.TrimSpace(req.ToUsername)
	if req.ToUserID == nil && toUsername == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "to_user_id or to_username is required")
	}

	var out *TransferDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		recipient, err := findRecipient(ctx, repo, req.ToUserID, toUsername)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "recipient not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup recipient")
		}
		if recipient.ID == fromUserID {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot transfer to yourself")
		}

		// Debit before credit: the guarded update both locks the sender row
		// and proves sufficient funds in one statement.
		rows, err := repo.DebitIfSufficient(ctx, fromUserID, req.Amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debit sender")
		}
		if rows == 0 {
			return classifyDebitFailure(ctx, repo, fromUserID)
		}

		rows, err = repo.Credit(ctx, recipient.ID, req.Amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit recipient")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "recipient not found")
		}

		sender, err := repo.FindByID(ctx, fromUserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload sender")
		}
		out = &TransferDTO{
			FromUserID:  fromUserID,
			ToUserID:    recipient.ID,
			Amount:      req.Amount,
			FromBalance: sender.Balance,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

// findRecipient loads the transfer target, preferring the id when both
// identifiers are supplied.
func findRecipient(ctx context.Context, repo *Repository, id *uuid.UUID, username string) (*models.User, error) {
	if id != nil {
		return repo.FindByID(ctx, *id)
	}
	return repo.FindByUsername(ctx, username)
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (*BalanceDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	var out *BalanceDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}
		out = &BalanceDTO{UserID: user.ID, Balance: user.Balance}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

func validateAmount(userID uuid.UUID, amount decimal.Decimal) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	return nil
}

// classifyDebitFailure distinguishes a missing user from an underfunded one
// after a guarded debit matched no rows.
func classifyDebitFailure(ctx context.Context, repo *Repository, userID uuid.UUID) error {
	if _, err := repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient balance")
}
