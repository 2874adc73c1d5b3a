package coupons

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplinehq/shopline-backend/pkg/config"
	"github.com/shoplinehq/shopline-backend/pkg/db"
	"github.com/shoplinehq/shopline-backend/pkg/db/models"
	pkgerrors "github.com/shoplinehq/shopline-backend/pkg/errors"
)

func setupCouponsTest(t *testing.T) Service {
	t.Helper()

	dsn := fmt.Sprintf("file:coupons_%s?mode=memory&cache=shared", t.Name())
	client, err := db.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.DB().AutoMigrate(&models.Coupon{}))

	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)
	return svc
}

func TestCreateCouponTrimsCode(t *testing.T) {
	svc := setupCouponsTest(t)

	coupon, err := svc.Create(context.Background(), CreateCouponRequest{
		Code:   "  SAVE3  ",
		Amount: decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "SAVE3", coupon.Code)
	assert.True(t, coupon.Amount.Equal(decimal.NewFromInt(3)))
}

func TestCreateCouponDuplicateCode(t *testing.T) {
	svc := setupCouponsTest(t)

	_, err := svc.Create(context.Background(), CreateCouponRequest{Code: "SAVE3", Amount: decimal.NewFromInt(3)})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateCouponRequest{Code: "SAVE3", Amount: decimal.NewFromInt(5)})
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestCreateCouponRejectsNegativeAmount(t *testing.T) {
	svc := setupCouponsTest(t)

	_, err := svc.Create(context.Background(), CreateCouponRequest{Code: "BAD", Amount: decimal.NewFromInt(-1)})
	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateCouponPartialFields(t *testing.T) {
	svc := setupCouponsTest(t)

	created, err := svc.Create(context.Background(), CreateCouponRequest{Code: "SAVE3", Amount: decimal.NewFromInt(3)})
	require.NoError(t, err)

	amount := decimal.NewFromInt(7)
	updated, err := svc.Update(context.Background(), created.ID, UpdateCouponRequest{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "SAVE3", updated.Code)
	assert.True(t, updated.Amount.Equal(amount))
}

func TestDeleteCouponThenGet(t *testing.T) {
	svc := setupCouponsTest(t)

	created, err := svc.Create(context.Background(), CreateCouponRequest{Code: "GONE", Amount: decimal.NewFromInt(2)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetCouponUnknownID(t *testing.T) {
	svc := setupCouponsTest(t)

	_, err := svc.Get(context.Background(), uuid.New())
	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
