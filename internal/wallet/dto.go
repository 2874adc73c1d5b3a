package wallet

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmountRequest carries the money amount for deposit and withdraw calls.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// TransferRequest carries the recipient and amount for a balance transfer.
// The recipient is addressed by id, or by username as a convenience.
type TransferRequest struct {
	ToUserID   *uuid.UUID      `json:"to_user_id"`
	ToUsername string          `json:"to_username"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
}

// BalanceDTO reports a user's balance after a wallet operation.
type BalanceDTO struct {
	UserID  uuid.UUID       `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

// TransferDTO reports both sides of a completed transfer.
type TransferDTO struct {
	FromUserID  uuid.UUID       `json:"from_user_id"`
	ToUserID    uuid.UUID       `json:"to_user_id"`
	Amount      decimal.Decimal `json:"amount"`
	FromBalance decimal.Decimal `json:"from_balance"`
}
