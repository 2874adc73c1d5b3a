package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shoplinehq/shopline-backend/internal/address"
	"github.com/shoplinehq/shopline-backend/internal/coupons"
	"github.com/shoplinehq/shopline-backend/internal/payments"
	"github.com/shoplinehq/shopline-backend/internal/wallet"
	"github.com/shoplinehq/shopline-backend/pkg/db"
	"github.com/shoplinehq/shopline-backend/pkg/db/models"
	"github.com/shoplinehq/shopline-backend/pkg/enums"
	pkgerrors "github.com/shoplinehq/shopline-backend/pkg/errors"
	"github.com/shoplinehq/shopline-backend/pkg/security"
)

// Service defines the order lifecycle operations exposed to controllers.
type Service interface {
	GetOpenOrder(ctx context.Context, userID uuid.UUID) (*OrderDTO, error)
	ApplyCoupon(ctx context.Context, userID uuid.UUID, req ApplyCouponRequest) (*OrderDTO, error)
	Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]OrderDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	db txRunner
}

// NewService wires an orders service with the provided transaction runner.
func NewService(dbClient txRunner) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("database client required")
	}
	return &service{db: dbClient}, nil
}

func (s *service) GetOpenOrder(ctx context.Context, userID uuid.UUID) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	var out *OrderDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := NewRepository(tx).FindOpenByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "no active order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup open order")
		}
		out = FromModel(order)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

// ApplyCoupon attaches the coupon to the open order, replacing any coupon
// already applied.
func (s *service) ApplyCoupon(ctx context.Context, userID uuid.UUID, req ApplyCouponRequest) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	var out *OrderDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		order, err := repo.FindOpenByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "no active order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup open order")
		}

		coupon, err := coupons.NewRepository(tx).FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup coupon")
		}

		if err := repo.AttachCoupon(ctx, order.ID, coupon.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attach coupon")
		}

		order.CouponID = &coupon.ID
		order.Coupon = coupon
		out = FromModel(order)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

// Checkout settles the open order in one transaction: it charges the wallet,
// records the payment, flags every line as ordered, and stamps the order with
// a fresh reference code.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	var out *OrderDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		order, err := repo.FindOpenByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "no active order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup open order")
		}
		if len(order.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		billingID, shippingID, err := resolveAddresses(ctx, tx, userID, req)
		if err != nil {
			return err
		}

		// A coupon can push the total below zero; the wallet is never
		// credited at checkout, so the charge floors at zero.
		charge := order.Total()
		if charge.IsNegative() {
			charge = decimal.Zero
		}

		walletRepo := wallet.NewRepository(tx)
		rows, err := walletRepo.DebitIfSufficient(ctx, userID, charge)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "charge wallet")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeInsufficientFunds, "insufficient balance")
		}

		payment := &models.Payment{
			UserID:  userID,
			OrderID: order.ID,
			Amount:  charge,
		}
		if err := payments.NewRepository(tx).Create(ctx, payment); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "order already settled")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment")
		}

		if err := repo.MarkLinesOrdered(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settle lines")
		}

		refCode, err := security.GenerateRefCode(security.RefCodeLength)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate ref code")
		}
		now := time.Now().UTC()
		if err := repo.SettleOrder(ctx, order.ID, refCode, payment.ID, billingID, shippingID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settle order")
		}

		order.Status = enums.OrderStatusSettled
		order.RefCode = &refCode
		order.PaymentID = &payment.ID
		order.BillingAddressID = billingID
		order.ShippingAddressID = shippingID
		order.OrderedAt = &now
		for i := range order.Items {
			order.Items[i].Ordered = true
		}
		out = FromModel(order)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return out, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	var dtos []OrderDTO
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		orders, err := NewRepository(tx).ListSettledByUser(ctx, userID, limit, offset)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
		}
		dtos = make([]OrderDTO, 0, len(orders))
		for i := range orders {
			dtos = append(dtos, *FromModel(&orders[i]))
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return dtos, nil
}

// resolveAddresses validates requested address IDs against the user's address
// book, falling back to per-type defaults when not provided. An order cannot
// settle without both addresses.
func resolveAddresses(ctx context.Context, tx *gorm.DB, userID uuid.UUID, req CheckoutRequest) (*uuid.UUID, *uuid.UUID, error) {
	repo := address.NewRepository(tx)

	resolve := func(requested *uuid.UUID, addrType enums.AddressType) (*uuid.UUID, error) {
		if requested != nil {
			addr, err := repo.FindByID(ctx, *requested)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s address not found", addrType))
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup address")
			}
			if addr.UserID != userID || addr.AddressType != addrType {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s address not found", addrType))
			}
			return &addr.ID, nil
		}
		addr, err := repo.FindDefault(ctx, userID, addrType)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no default %s address", addrType))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup default address")
		}
		return &addr.ID, nil
	}

	billingID, err := resolve(req.BillingAddressID, enums.AddressTypeBilling)
	if err != nil {
		return nil, nil, err
	}
	shippingID, err := resolve(req.ShippingAddressID, enums.AddressTypeShipping)
	if err != nil {
		return nil, nil, err
	}
	return billingID, shippingID, nil
}
