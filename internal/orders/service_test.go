package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplinehq/shopline-backend/internal/cart"
	"github.com/shoplinehq/shopline-backend/pkg/config"
	"github.com/shoplinehq/shopline-backend/pkg/db"
	"github.com/shoplinehq/shopline-backend/pkg/db/models"
	"github.com/shoplinehq/shopline-backend/pkg/enums"
	pkgerrors "github.com/shoplinehq/shopline-backend/pkg/errors"
)

func setupOrdersTestDB(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", t.Name())
	client, err := db.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(
		&models.User{}, &models.Shop{}, &models.Item{}, &models.Coupon{},
		&models.Order{}, &models.OrderItem{}, &models.Address{}, &models.Payment{},
	))
	return client
}

type ordersFixture struct {
	client *db.Client
	user   *models.User
	widget *models.Item
	gizmo  *models.Item
}

// seedOrdersFixture creates a buyer plus two items: a widget discounted from
// 12 to 10, and a gizmo at 5.
func seedOrdersFixture(t *testing.T, client *db.Client) ordersFixture {
	t.Helper()

	user := &models.User{
		Email: "buyer@example.com", Username: "buyer", PasswordHash: "hash",
		Balance: decimal.NewFromInt(100), IsActive: true,
	}
	require.NoError(t, client.DB().Create(user).Error)

	vendor := &models.User{Email: "v@example.com", Username: "vend", PasswordHash: "hash", IsVendor: true, IsActive: true}
	require.NoError(t, client.DB().Create(vendor).Error)
	shop := &models.Shop{OwnerID: vendor.ID, Name: "General Store"}
	require.NoError(t, client.DB().Create(shop).Error)

	discount := decimal.NewFromInt(10)
	widget := &models.Item{ShopID: shop.ID, Name: "Widget", Price: decimal.NewFromInt(12), DiscountPrice: &discount}
	require.NoError(t, client.DB().Create(widget).Error)

	gizmo := &models.Item{ShopID: shop.ID, Name: "Gizmo", Price: decimal.NewFromInt(5)}
	require.NoError(t, client.DB().Create(gizmo).Error)

	return ordersFixture{client: client, user: user, widget: widget, gizmo: gizmo}
}

// fillCart puts 2 widgets and 1 gizmo in the buyer's cart.
func fillCart(t *testing.T, fx ordersFixture) {
	t.Helper()
	cartSvc, err := cart.NewService(fx.client)
	require.NoError(t, err)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := cartSvc.AddToCart(ctx, fx.user.ID, fx.widget.ID)
		require.NoError(t, err)
	}
	_, err = cartSvc.AddToCart(ctx, fx.user.ID, fx.gizmo.ID)
	require.NoError(t, err)
}

// seedDefaultAddresses gives the buyer a default billing and shipping address
// so checkout can settle without explicit overrides.
func seedDefaultAddresses(t *testing.T, fx ordersFixture) (billing, shipping *models.Address) {
	t.Helper()
	billing = &models.Address{
		UserID: fx.user.ID, AddressType: enums.AddressTypeBilling,
		StreetAddress: "1 Main St", City: "Springfield", Zip: "12345", IsDefault: true,
	}
	require.NoError(t, fx.client.DB().Create(billing).Error)
	shipping = &models.Address{
		UserID: fx.user.ID, AddressType: enums.AddressTypeShipping,
		StreetAddress: "1 Main St", City: "Springfield", Zip: "12345", IsDefault: true,
	}
	require.NoError(t, fx.client.DB().Create(shipping).Error)
	return billing, shipping
}

func TestGetOpenOrderTotalUsesDiscountAndCoupon(t *testing.T) {
	client := setupOrdersTestDB(t)
	fx := seedOrdersFixture(t, client)
	fillCart(t, fx)

	svc, err := NewService(client)
	require.NoError(t, err)
	ctx := context.Background()

	// 2 x widget(10 after discount) + 1 x gizmo(5) = 25
	order, err := svc.GetOpenOrder(ctx, fx.user.ID)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(25)), "total %s", order.Total)
	assert.Len(t, order.Lines, 2)

	coupon := &models.Coupon{Code: "SAVE3", Amount: decimal.NewFromInt(3)}
	require.NoError(t, client.DB().Create(coupon).Error)

	order, err = svc.ApplyCoupon(ctx, fx.user.ID, ApplyCouponRequest{Code: "SAVE3"})
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(22)), "total %s", order.Total)
}

func TestApplyCouponReplacesPrevious(t *testing.T) {
	client := setupOrdersTestDB(t)
	fx := seedOrdersFixture(t, client)
	fillCart(t, fx)

	require.NoError(t, client.DB().Create(&models.Coupon{Code: "SAVE3", Amount: decimal.NewFromInt(3)}).Error)
	require.NoError(t, client.DB().Create(&models.Coupon{Code: "SAVE10", Amount: decimal.NewFromInt(10)}).Error)

	svc, err := NewService(client)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.ApplyCoupon(ctx, fx.user.ID, ApplyCouponRequest{Code: "SAVE3"})
	require.NoError(t, err)

	order, err := svc.ApplyCoupon(ctx, fx.user.ID, ApplyCouponRequest{Code: "SAVE10"})
	require.NoError(t, err)
	require.NotNil(t, order.CouponCode)
	assert.Equal(t, "SAVE10", *order.CouponCode)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(15)), "total %s", order.Total)
}

func TestApplyCouponUnknownCode(t *testing.T) {
	client := setupOrdersTestDB(t)
	fx := seedOrdersFixture(t, client)
	fillCart(t, fx)

	svc, err := NewService(client)
	require.NoError(t, err)

	_, err = svc.ApplyCoupon(context.Background(), fx.user.ID, ApplyCouponRequest{Code: "NOPE"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestGetOpenOrderWithoutCart(t *testing.T) {
	client := setupOrdersTestDB(t)
	fx := seedOrdersFixture(t, client)

	svc, err := NewService(client)
	require.NoError(t, err)

	_, err = svc.GetOpenOrder(context.Background(), fx.user.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCheckoutSettlesOrderAndChargesWallet(t *testing.T) {
	client := setupOrdersTestDB(t)
	fx := seedOrdersFixture(t, client)
	fillCart(t, fx)
	seedDefaultAddresses(t, fx)

	require.NoError(t, client.DB().Create(&models.Coupon{Code: "SAVE3", Amount: decimal.NewFromInt(3)}).Error)

	svc, err := NewService(client)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.ApplyCoupon(ctx, fx.user.ID, ApplyCouponRequest{Code: "SAVE3"})
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, fx.user.ID, CheckoutRequest{})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusSettled, order.Status)
	require.NotNil(t, order.RefCode)
	assert.Len(t, *order.RefCode, 20)
	for _, ch := range *order.RefCode {
		ok := (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
		assert.True(t, ok, "ref code char %q", ch)
	}
	require.NotNil(t, order.OrderedAt)

	// balance 100 - total 22 = 78
	var buyer models.User
	require.NoError(t, client.DB().First(&buyer, "id = ?", fx.user.ID).Error)
	assert.True(t, buyer.Balance.Equal(decimal.NewFromInt(78)), "balance %s", buyer.Balance)

	var payment models.Payment
	require.NoError(t, client.DB().First(&payment, "order_id = ?", order.ID).Error)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(22)))

	var openLines int64
	require.NoError(t, client.DB().Model(&models.OrderItem{}).
		Where("user_id = ? AND NOT ordered", fx.user.ID).Count(&openLines).Error)
	assert.Zero(t, openLines, "all lines must be flagged ordered")

	// A settled order no longer reads as active.
	_, err = svc.GetOpenOrder(ctx, fx.user.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCheckoutInsufficientFundsRollsBackEverything(t *testing.T) {
	client := setupOrdersTestDB(t)
	fx := seedOrdersFixture(t, client)
	fillCart(t, fx)
	seedDefaultAddresses(t, fx)

	require.NoError(t, client.DB().Model(&models.User{}).
		Where("id = ?", fx.user.ID).
		UpdateColumn("balance", decimal.NewFromInt(10)).Error)

	svc, err := NewService(client)
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), fx.user.ID, CheckoutRequest{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientFunds, typed.Code())

	var buyer models.User
	require.NoError(t, client.DB().First(&buyer, "id = ?", fx.user.ID).Error)
	assert.True(t, buyer.Balance.Equal(decimal.NewFromInt(10)), "balance must be untouched")

	var order models.Order
	require.NoError(t, client.DB().First(&order, "user_id = ?", fx.user.ID).Error)
	assert.Equal(t, enums.OrderStatusOpen, order.Status, "order must stay open")
	assert.Nil(t, order.RefCode)

	var paymentCount int64
	require.NoError(t, client.DB().Model(&models.Payment{}).Count(&paymentCount).Error)
	assert.Zero(t, paymentCount, "no payment may survive the rollback")
}

func TestCheckoutEmptyCart(t *testing.T) {
	client := setupOrdersTestDB(t)
	fx := seedOrdersFixture(t, client)

	// Open an order with one line, then remove it so the order exists but is empty.
	cartSvc, err := cart.NewService(client)
	require.NoError(t, err)
	ctx := context.Background()
	line, err := cartSvc.AddToCart(ctx, fx.user.ID, fx.gizmo.ID)
	require.NoError(t, err)
	require.NoError(t, cartSvc.RemoveLine(ctx, fx.user.ID, line.ID))

	svc, err := NewService(client)
	require.NoError(t, err)
	_, err = svc.Checkout(ctx, fx.user.ID, CheckoutRequest{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCheckoutUsesDefaultAddresses(t *testing.T) {
	client := setupOrdersTestDB(t)
	fx := seedOrdersFixture(t, client)
	fillCart(t, fx)
	billing, shipping := seedDefaultAddresses(t, fx)

	svc, err := NewService(client)
	require.NoError(t, err)

	order, err := svc.Checkout(context.Background(), fx.user.ID, CheckoutRequest{})
	require.NoError(t, err)
	require.NotNil(t, order.BillingAddressID)
	assert.Equal(t, billing.ID, *order.BillingAddressID)
	require.NotNil(t, order.ShippingAddressID)
	assert.Equal(t, shipping.ID, *order.ShippingAddressID)
}

func TestCheckoutFailsWithoutAddresses(t *testing.T) {
	client := setupOrdersTestDB(t)
	fx := seedOrdersFixture(t, client)
	fillCart(t, fx)

	svc, err := NewService(client)
	require.NoError(t, err)
	ctx := context.Background()

	// No addresses on file and none supplied.
	_, err = svc.Checkout(ctx, fx.user.ID, CheckoutRequest{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	// A default billing address alone is not enough to settle.
	billing := &models.Address{
		UserID: fx.user.ID, AddressType: enums.AddressTypeBilling,
		StreetAddress: "1 Main St", City: "Springfield", Zip: "12345", IsDefault: true,
	}
	require.NoError(t, client.DB().Create(billing).Error)

	_, err = svc.Checkout(ctx, fx.user.ID, CheckoutRequest{})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	var order models.Order
	require.NoError(t, client.DB().First(&order, "user_id = ?", fx.user.ID).Error)
	assert.Equal(t, enums.OrderStatusOpen, order.Status, "order must stay open")

	var buyer models.User
	require.NoError(t, client.DB().First(&buyer, "id = ?", fx.user.ID).Error)
	assert.True(t, buyer.Balance.Equal(decimal.NewFromInt(100)), "balance must be untouched")
}

func TestCheckoutCouponExceedingTotalChargesNothing(t *testing.T) {
	client := setupOrdersTestDB(t)
	fx := seedOrdersFixture(t, client)
	fillCart(t, fx)
	seedDefaultAddresses(t, fx)

	// Cart totals 25; the coupon is worth 50.
	require.NoError(t, client.DB().Create(&models.Coupon{Code: "MEGA50", Amount: decimal.NewFromInt(50)}).Error)

	svc, err := NewService(client)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.ApplyCoupon(ctx, fx.user.ID, ApplyCouponRequest{Code: "MEGA50"})
	require.NoError(t, err)

	order, err := svc.Checkout(ctx, fx.user.ID, CheckoutRequest{})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusSettled, order.Status)

	// The wallet must never be credited by an oversized coupon.
	var buyer models.User
	require.NoError(t, client.DB().First(&buyer, "id = ?", fx.user.ID).Error)
	assert.True(t, buyer.Balance.Equal(decimal.NewFromInt(100)), "balance %s", buyer.Balance)

	var payment models.Payment
	require.NoError(t, client.DB().First(&payment, "order_id = ?", order.ID).Error)
	assert.True(t, payment.Amount.IsZero(), "payment amount %s", payment.Amount)
}

func TestCheckoutRejectsForeignAddress(t *testing.T) {
	client := setupOrdersTestDB(t)
	fx := seedOrdersFixture(t, client)
	fillCart(t, fx)

	other := &models.User{Email: "o@example.com", Username: "other", PasswordHash: "hash", IsActive: true}
	require.NoError(t, client.DB().Create(other).Error)
	foreign := &models.Address{
		UserID: other.ID, AddressType: enums.AddressTypeBilling,
		StreetAddress: "2 Side St", City: "Shelbyville", Zip: "54321",
	}
	require.NoError(t, client.DB().Create(foreign).Error)

	svc, err := NewService(client)
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), fx.user.ID, CheckoutRequest{BillingAddressID: &foreign.ID})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListMineReturnsSettledOrders(t *testing.T) {
	client := setupOrdersTestDB(t)
	fx := seedOrdersFixture(t, client)
	fillCart(t, fx)
	seedDefaultAddresses(t, fx)

	svc, err := NewService(client)
	require.NoError(t, err)
	ctx := context.Background()

	settled, err := svc.Checkout(ctx, fx.user.ID, CheckoutRequest{})
	require.NoError(t, err)

	history, err := svc.ListMine(ctx, fx.user.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, settled.ID, history[0].ID)
	assert.Equal(t, enums.OrderStatusSettled, history[0].Status)
}
