package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Store{},
		&models.Product{},
		&models.DeliveryZone{},
		&models.Coupon{},
		&models.Order{},
		&models.OrderItem{},
		&models.WalletTransaction{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(conn, nil)
	require.NoError(t, err)
	return svc, conn
}

func mustCreateStore(t *testing.T, conn *gorm.DB) *models.Store {
	t.Helper()

	store := &models.Store{Name: "Acme", Slug: "acme-" + uuid.NewString()[:8]}
	require.NoError(t, conn.Create(store).Error)
	return store
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, storeID uuid.UUID, name, price string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		StoreID:     storeID,
		Name:        name,
		PriceRetail: decimal.RequireFromString(price),
		StockQty:    stock,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func reloadProduct(t *testing.T, conn *gorm.DB, id uuid.UUID) *models.Product {
	t.Helper()

	var product models.Product
	require.NoError(t, conn.First(&product, "id = ?", id).Error)
	return &product
}

func TestCreateSnapshotsItemsAndReservesStock(t *testing.T) {
	svc, conn := newTestService(t)
	store := mustCreateStore(t, conn)
	product := mustCreateProduct(t, conn, store.ID, "Cola", "12.50", 10)

	order, err := svc.Create(context.Background(), store.ID, CreateOrderInput{
		CustomerPhone: "0244000000",
		Items:         []ItemInput{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("37.50")))
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Cola", order.Items[0].Name)
	assert.True(t, order.Items[0].Price.Equal(decimal.RequireFromString("12.50")))

	assert.Equal(t, 7, reloadProduct(t, conn, product.ID).StockQty)

	// Later product edits must not leak into the snapshot.
	require.NoError(t, conn.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{"name": "New Cola", "price_retail": "99.00"}).Error)

	fetched, err := svc.Get(context.Background(), order.ID, store.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cola", fetched.Items[0].Name)
	assert.True(t, fetched.Items[0].Price.Equal(decimal.RequireFromString("12.50")))
}

func TestCreateInsufficientStockLeavesNoTrace(t *testing.T) {
	svc, conn := newTestService(t)
	store := mustCreateStore(t, conn)
	cola := mustCreateProduct(t, conn, store.ID, "Cola", "12.50", 10)
	fanta := mustCreateProduct(t, conn, store.ID, "Fanta", "10.00", 1)

	_, err := svc.Create(context.Background(), store.ID, CreateOrderInput{
		CustomerPhone: "0244000000",
		Items: []ItemInput{
			{ProductID: cola.ID, Quantity: 2},
			{ProductID: fanta.ID, Quantity: 5},
		},
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))

	// The whole checkout rolls back, including the first item's reservation.
	assert.Equal(t, 10, reloadProduct(t, conn, cola.ID).StockQty)
	assert.Equal(t, 1, reloadProduct(t, conn, fanta.ID).StockQty)

	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateAppliesZoneFeeAndCoupon(t *testing.T) {
	svc, conn := newTestService(t)
	store := mustCreateStore(t, conn)
	product := mustCreateProduct(t, conn, store.ID, "Cola", "100.00", 10)

	zone := &models.DeliveryZone{StoreID: store.ID, Name: "Osu", Fee: decimal.RequireFromString("15.00")}
	require.NoError(t, conn.Create(zone).Error)
	coupon := &models.Coupon{
		StoreID: store.ID,
		Code:    "SAVE10",
		Type:    enums.CouponTypePercent,
		Value:   decimal.RequireFromString("10"),
	}
	require.NoError(t, conn.Create(coupon).Error)

	code := "save10"
	order, err := svc.Create(context.Background(), store.ID, CreateOrderInput{
		CustomerPhone:  "0244000000",
		Items:          []ItemInput{{ProductID: product.ID, Quantity: 2}},
		DeliveryZoneID: &zone.ID,
		CouponCode:     &code,
	})
	require.NoError(t, err)

	// 200 subtotal - 20 discount + 15 delivery.
	assert.True(t, order.Total.Equal(decimal.RequireFromString("195.00")))
	assert.True(t, order.Discount.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, order.DeliveryFee.Equal(decimal.RequireFromString("15.00")))
	require.NotNil(t, order.CouponCode)
	assert.Equal(t, "SAVE10", *order.CouponCode)

	var storedCoupon models.Coupon
	require.NoError(t, conn.First(&storedCoupon, "id = ?", coupon.ID).Error)
	assert.Equal(t, 1, storedCoupon.Uses)
}

func TestCompleteCreditsWalletOnce(t *testing.T) {
	svc, conn := newTestService(t)
	store := mustCreateStore(t, conn)
	product := mustCreateProduct(t, conn, store.ID, "Cola", "50.00", 10)

	order, err := svc.Create(context.Background(), store.ID, CreateOrderInput{
		CustomerPhone: "0244000000",
		Items:         []ItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	completed, err := svc.Complete(context.Background(), order.ID, store.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, completed.Status)

	var updated models.Store
	require.NoError(t, conn.First(&updated, "id = ?", store.ID).Error)
	assert.True(t, updated.WalletBalance.Equal(decimal.RequireFromString("100.00")))

	var txn models.WalletTransaction
	require.NoError(t, conn.First(&txn, "store_id = ?", store.ID).Error)
	assert.Equal(t, enums.WalletTransactionSale, txn.Type)
	require.NotNil(t, txn.ReferenceID)
	assert.Equal(t, order.ID, *txn.ReferenceID)

	// A second completion must not double-credit.
	_, err = svc.Complete(context.Background(), order.ID, store.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
	require.NoError(t, conn.First(&updated, "id = ?", store.ID).Error)
	assert.True(t, updated.WalletBalance.Equal(decimal.RequireFromString("100.00")))
}

func TestCancelRestocksItems(t *testing.T) {
	svc, conn := newTestService(t)
	store := mustCreateStore(t, conn)
	product := mustCreateProduct(t, conn, store.ID, "Cola", "50.00", 10)

	order, err := svc.Create(context.Background(), store.ID, CreateOrderInput{
		CustomerPhone: "0244000000",
		Items:         []ItemInput{{ProductID: product.ID, Quantity: 4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, reloadProduct(t, conn, product.ID).StockQty)

	cancelled, err := svc.Cancel(context.Background(), order.ID, store.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 10, reloadProduct(t, conn, product.ID).StockQty)

	// No wallet movement on cancellation.
	var count int64
	require.NoError(t, conn.Model(&models.WalletTransaction{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = svc.Complete(context.Background(), order.ID, store.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestOrderMutationsAreTenantScoped(t *testing.T) {
	svc, conn := newTestService(t)
	store := mustCreateStore(t, conn)
	other := mustCreateStore(t, conn)
	product := mustCreateProduct(t, conn, store.ID, "Cola", "50.00", 10)

	order, err := svc.Create(context.Background(), store.ID, CreateOrderInput{
		CustomerPhone: "0244000000",
		Items:         []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), order.ID, other.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Cancel(context.Background(), order.ID, other.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Get(context.Background(), order.ID, other.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	kept, err := svc.Get(context.Background(), order.ID, store.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, kept.Status)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, conn := newTestService(t)
	store := mustCreateStore(t, conn)
	product := mustCreateProduct(t, conn, store.ID, "Cola", "50.00", 10)

	first, err := svc.Create(context.Background(), store.ID, CreateOrderInput{
		CustomerPhone: "0244000000",
		Items:         []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), store.ID, CreateOrderInput{
		CustomerPhone: "0244000001",
		Items:         []ItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), first.ID, store.ID)
	require.NoError(t, err)

	pending := enums.OrderStatusPending
	list, err := svc.List(context.Background(), store.ID, &pending)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	all, err := svc.List(context.Background(), store.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
