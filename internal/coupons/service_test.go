package coupons

import (
	"context"
	"testing"
	"time"

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

func newTestService(t *testing.T) *service {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Coupon{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(conn, nil)
	require.NoError(t, err)
	return svc.(*service)
}

func TestRedeemIncrementsUses(t *testing.T) {
	svc := newTestService(t)
	storeID := uuid.New()

	created, err := svc.Create(context.Background(), storeID, CreateCouponInput{
		Code:  "save10",
		Type:  enums.CouponTypePercent,
		Value: decimal.RequireFromString("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", created.Code)

	for i := 1; i <= 3; i++ {
		redeemed, err := svc.Redeem(context.Background(), storeID, "SAVE10")
		require.NoError(t, err)
		assert.Equal(t, i, redeemed.Uses)
	}
}

func TestRedeemRespectsMaxUses(t *testing.T) {
	svc := newTestService(t)
	storeID := uuid.New()
	maxUses := 1

	_, err := svc.Create(context.Background(), storeID, CreateCouponInput{
		Code:    "ONCE",
		Type:    enums.CouponTypeFixed,
		Value:   decimal.RequireFromString("5"),
		MaxUses: &maxUses,
	})
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), storeID, "ONCE")
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), storeID, "ONCE")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	list, err := svc.List(context.Background(), storeID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Uses)
}

func TestRedeemExpiredCoupon(t *testing.T) {
	svc := newTestService(t)
	storeID := uuid.New()
	past := time.Now().Add(-time.Hour)

	_, err := svc.Create(context.Background(), storeID, CreateCouponInput{
		Code:      "OLD",
		Type:      enums.CouponTypeFixed,
		Value:     decimal.RequireFromString("5"),
		ExpiresAt: &past,
	})
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), storeID, "OLD")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestRedeemIsTenantScoped(t *testing.T) {
	svc := newTestService(t)
	owner := uuid.New()

	_, err := svc.Create(context.Background(), owner, CreateCouponInput{
		Code:  "MINE",
		Type:  enums.CouponTypeFixed,
		Value: decimal.RequireFromString("5"),
	})
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), uuid.New(), "MINE")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteCrossTenantIsNotFound(t *testing.T) {
	svc := newTestService(t)
	owner := uuid.New()

	coupon, err := svc.Create(context.Background(), owner, CreateCouponInput{
		Code:  "MINE",
		Type:  enums.CouponTypeFixed,
		Value: decimal.RequireFromString("5"),
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), coupon.ID, uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.Delete(context.Background(), coupon.ID, owner))
}

func TestCheckDoesNotConsumeAUse(t *testing.T) {
	svc := newTestService(t)
	storeID := uuid.New()
	maxUses := 1

	_, err := svc.Create(context.Background(), storeID, CreateCouponInput{
		Code:    "PREVIEW",
		Type:    enums.CouponTypeFixed,
		Value:   decimal.RequireFromString("5"),
		MaxUses: &maxUses,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		coupon, err := svc.Check(context.Background(), storeID, "preview")
		require.NoError(t, err)
		assert.Equal(t, 0, coupon.Uses)
	}

	// Once the single use is spent, previews report the exhaustion too.
	_, err = svc.Redeem(context.Background(), storeID, "PREVIEW")
	require.NoError(t, err)
	_, err = svc.Check(context.Background(), storeID, "PREVIEW")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.Check(context.Background(), uuid.New(), "PREVIEW")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestDiscount(t *testing.T) {
	percent := &models.Coupon{Type: enums.CouponTypePercent, Value: decimal.RequireFromString("10")}
	fixed := &models.Coupon{Type: enums.CouponTypeFixed, Value: decimal.RequireFromString("30")}

	assert.True(t, Discount(percent, decimal.RequireFromString("200")).Equal(decimal.RequireFromString("20")))
	assert.True(t, Discount(fixed, decimal.RequireFromString("200")).Equal(decimal.RequireFromString("30")))
	// Never more than the subtotal.
	assert.True(t, Discount(fixed, decimal.RequireFromString("20")).Equal(decimal.RequireFromString("20")))
	assert.True(t, Discount(nil, decimal.RequireFromString("20")).IsZero())
}
