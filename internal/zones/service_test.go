package zones

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
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.DeliveryZone{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(conn, nil)
	require.NoError(t, err)
	return svc
}

func TestZoneLifecycle(t *testing.T) {
	svc := newTestService(t)
	storeID := uuid.New()

	zone, err := svc.Create(context.Background(), storeID, ZoneInput{
		Name: "Osu",
		Fee:  decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, storeID, zone.StoreID)

	updated, err := svc.Update(context.Background(), zone.ID, storeID, ZoneInput{
		Name: "Osu Central",
		Fee:  decimal.RequireFromString("12.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Osu Central", updated.Name)
	assert.True(t, updated.Fee.Equal(decimal.RequireFromString("12.00")))

	require.NoError(t, svc.Delete(context.Background(), zone.ID, storeID))

	items, err := svc.List(context.Background(), storeID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestZoneCrossTenantIsNotFound(t *testing.T) {
	svc := newTestService(t)
	owner := uuid.New()
	other := uuid.New()

	zone, err := svc.Create(context.Background(), owner, ZoneInput{
		Name: "Osu",
		Fee:  decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), zone.ID, other, ZoneInput{
		Name: "Hijacked",
		Fee:  decimal.Zero,
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	err = svc.Delete(context.Background(), zone.ID, other)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	kept, err := svc.Get(context.Background(), zone.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, "Osu", kept.Name)
}

func TestZoneValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), uuid.New(), ZoneInput{Name: "  "})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(context.Background(), uuid.New(), ZoneInput{
		Name: "Osu",
		Fee:  decimal.RequireFromString("-1"),
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
