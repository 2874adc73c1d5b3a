package cron

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shoplinehq/shopline-backend/pkg/config"
	"github.com/shoplinehq/shopline-backend/pkg/db"
	"github.com/shoplinehq/shopline-backend/pkg/db/models"
	"github.com/shoplinehq/shopline-backend/pkg/enums"
	"github.com/shoplinehq/shopline-backend/pkg/logger"
)

func setupCronTestDB(t *testing.T) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:cron_%s?mode=memory&cache=shared", t.Name())
	client, err := db.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(
		&models.User{}, &models.Shop{}, &models.Item{},
		&models.Coupon{}, &models.Order{}, &models.OrderItem{},
	))
	return client
}

func seedCronFixtures(t *testing.T, client *db.Client) (*models.User, *models.Item) {
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

func backdate(t *testing.T, client *db.Client, model any, id any, at time.Time) {
	t.Helper()
	require.NoError(t, client.DB().Model(model).Where("id = ?", id).UpdateColumn("updated_at", at).Error)
}

func newExpiryJob(t *testing.T, client *db.Client) *cartExpiryJob {
	t.Helper()

	job, err := NewCartExpiryJob(CartExpiryJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "cron-test"}),
		DB:      client,
		MaxIdle: 30 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return job.(*cartExpiryJob)
}

func TestCartExpiryDropsIdleOpenOrder(t *testing.T) {
	client := setupCronTestDB(t)
	user, item := seedCronFixtures(t, client)

	order := &models.Order{UserID: user.ID, Status: enums.OrderStatusOpen}
	require.NoError(t, client.DB().Create(order).Error)
	line := &models.OrderItem{OrderID: &order.ID, ItemID: item.ID, UserID: user.ID, Quantity: 2}
	require.NoError(t, client.DB().Create(line).Error)

	past := time.Now().Add(-40 * 24 * time.Hour)
	backdate(t, client, &models.Order{}, order.ID, past)
	backdate(t, client, &models.OrderItem{}, line.ID, past)

	require.NoError(t, newExpiryJob(t, client).Run(context.Background()))

	var orderCount, lineCount int64
	require.NoError(t, client.DB().Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, client.DB().Model(&models.OrderItem{}).Count(&lineCount).Error)
	require.Zero(t, orderCount)
	require.Zero(t, lineCount)
}

func TestCartExpiryKeepsOrderWithRecentLineActivity(t *testing.T) {
	client := setupCronTestDB(t)
	user, item := seedCronFixtures(t, client)

	order := &models.Order{UserID: user.ID, Status: enums.OrderStatusOpen}
	require.NoError(t, client.DB().Create(order).Error)
	line := &models.OrderItem{OrderID: &order.ID, ItemID: item.ID, UserID: user.ID, Quantity: 1}
	require.NoError(t, client.DB().Create(line).Error)

	// The order record is old but the cart was touched yesterday.
	backdate(t, client, &models.Order{}, order.ID, time.Now().Add(-40*24*time.Hour))
	backdate(t, client, &models.OrderItem{}, line.ID, time.Now().Add(-24*time.Hour))

	require.NoError(t, newExpiryJob(t, client).Run(context.Background()))

	var orderCount int64
	require.NoError(t, client.DB().Model(&models.Order{}).Count(&orderCount).Error)
	require.EqualValues(t, 1, orderCount)
}

func TestCartExpiryIgnoresSettledOrders(t *testing.T) {
	client := setupCronTestDB(t)
	user, item := seedCronFixtures(t, client)

	now := time.Now()
	settledAt := now.Add(-60 * 24 * time.Hour)
	ref := "abcdef0123456789abcd"
	order := &models.Order{UserID: user.ID, Status: enums.OrderStatusSettled, RefCode: &ref, OrderedAt: &settledAt}
	require.NoError(t, client.DB().Create(order).Error)
	line := &models.OrderItem{OrderID: &order.ID, ItemID: item.ID, UserID: user.ID, Quantity: 3, Ordered: true}
	require.NoError(t, client.DB().Create(line).Error)

	backdate(t, client, &models.Order{}, order.ID, settledAt)
	backdate(t, client, &models.OrderItem{}, line.ID, settledAt)

	require.NoError(t, newExpiryJob(t, client).Run(context.Background()))

	var orderCount, lineCount int64
	require.NoError(t, client.DB().Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, client.DB().Model(&models.OrderItem{}).Count(&lineCount).Error)
	require.EqualValues(t, 1, orderCount)
	require.EqualValues(t, 1, lineCount)
}
