package cart

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
	"github.com/shoplinehq/shopline-backend/pkg/enums"
	pkgerrors "github.com/shoplinehq/shopline-backend/pkg/errors"
)

func setupCartTestDB(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:cart_%s?mode=memory&cache=shared", t.Name())
	client, err := db.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(
		&models.User{}, &models.Shop{}, &models.Item{},
		&models.Coupon{}, &models.Order{}, &models.OrderItem{},
	))
	return client
}

func seedCartFixtures(t *testing.T, client *db.Client) (*models.User, *models.Item) {
	t.Helper()

	user := &models.User{Email: "buyer@example.com", Username: "buyer", PasswordHash: "hash", IsActive: true}
	require.NoError(t, client.DB().Create(user).Error)

	vendor := &models.User{Email: "v@example.com", Username: "vend", PasswordHash: "hash", IsVendor: true, IsActive: true}
	require.NoError(t, client.DB().Create(vendor).Error)

	shop := &models.Shop{OwnerID: vendor.ID, Name: "General Store"}
	require.NoError(t, client.DB().Create(shop).Error)

	item := &models.Item{ShopID: shop.ID, Name: "Widget", Price: decimal.NewFromInt(10)}
	require.NoError(t, client.DB().Create(item).Error)

	return user, item
}

func TestAddToCartCreatesOrderAndLine(t *testing.T) {
	client := setupCartTestDB(t)
	user, item := seedCartFixtures(t, client)

	svc, err := NewService(client)
	require.NoError(t, err)

	line, err := svc.AddToCart(context.Background(), user.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)
	assert.True(t, line.FinalPrice.Equal(decimal.NewFromInt(10)))

	var order models.Order
	require.NoError(t, client.DB().Where("user_id = ? AND status = ?", user.ID, enums.OrderStatusOpen).First(&order).Error)
}

func TestRepeatedAddIncrementsSingleLine(t *testing.T) {
	client := setupCartTestDB(t)
	user, item := seedCartFixtures(t, client)

	svc, err := NewService(client)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.AddToCart(context.Background(), user.ID, item.ID)
		require.NoError(t, err)
	}

	var lines []models.OrderItem
	require.NoError(t, client.DB().Where("user_id = ? AND item_id = ?", user.ID, item.ID).Find(&lines).Error)
	require.Len(t, lines, 1, "repeated adds must not create parallel lines")
	assert.Equal(t, 3, lines[0].Quantity)

	var orders []models.Order
	require.NoError(t, client.DB().Where("user_id = ?", user.ID).Find(&orders).Error)
	assert.Len(t, orders, 1, "repeated adds must reuse the open order")
}

func TestAddToCartUnknownItem(t *testing.T) {
	client := setupCartTestDB(t)
	user, _ := seedCartFixtures(t, client)

	svc, err := NewService(client)
	require.NoError(t, err)

	_, err = svc.AddToCart(context.Background(), user.ID, uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestDecrementLowersQuantityThenRemoves(t *testing.T) {
	client := setupCartTestDB(t)
	user, item := seedCartFixtures(t, client)

	svc, err := NewService(client)
	require.NoError(t, err)

	_, err = svc.AddToCart(context.Background(), user.ID, item.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(context.Background(), user.ID, item.ID)
	require.NoError(t, err)

	line, err := svc.DecrementOrRemove(context.Background(), user.ID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, 1, line.Quantity)

	line, err = svc.DecrementOrRemove(context.Background(), user.ID, item.ID)
	require.NoError(t, err)
	assert.Nil(t, line, "line at quantity 1 should be removed")

	var count int64
	require.NoError(t, client.DB().Model(&models.OrderItem{}).
		Where("user_id = ? AND item_id = ?", user.ID, item.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDecrementWithoutActiveOrder(t *testing.T) {
	client := setupCartTestDB(t)
	user, item := seedCartFixtures(t, client)

	svc, err := NewService(client)
	require.NoError(t, err)

	_, err = svc.DecrementOrRemove(context.Background(), user.ID, item.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestDecrementItemNotInCart(t *testing.T) {
	client := setupCartTestDB(t)
	user, item := seedCartFixtures(t, client)

	svc, err := NewService(client)
	require.NoError(t, err)

	// Open an order by adding the first item, then target a different item.
	_, err = svc.AddToCart(context.Background(), user.ID, item.ID)
	require.NoError(t, err)

	var shop models.Shop
	require.NoError(t, client.DB().First(&shop).Error)
	other := &models.Item{ShopID: shop.ID, Name: "Gadget", Price: decimal.NewFromInt(5)}
	require.NoError(t, client.DB().Create(other).Error)

	_, err = svc.DecrementOrRemove(context.Background(), user.ID, other.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRemoveLineChecksOwnership(t *testing.T) {
	client := setupCartTestDB(t)
	user, item := seedCartFixtures(t, client)

	intruder := &models.User{Email: "i@example.com", Username: "intruder", PasswordHash: "hash", IsActive: true}
	require.NoError(t, client.DB().Create(intruder).Error)

	svc, err := NewService(client)
	require.NoError(t, err)

	line, err := svc.AddToCart(context.Background(), user.ID, item.ID)
	require.NoError(t, err)

	err = svc.RemoveLine(context.Background(), intruder.ID, line.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code(), "foreign lines must read as missing")

	var count int64
	require.NoError(t, client.DB().Model(&models.OrderItem{}).Where("id = ?", line.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "foreign delete must not remove the line")

	require.NoError(t, svc.RemoveLine(context.Background(), user.ID, line.ID))
	require.NoError(t, client.DB().Model(&models.OrderItem{}).Where("id = ?", line.ID).Count(&count).Error)
	assert.Zero(t, count)
}
