package stores

import (
	"context"
	"testing"

	"github.com/google/uuid"
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
	if err := conn.AutoMigrate(&models.Store{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(conn, nil)
	require.NoError(t, err)
	return svc, conn
}

func mustCreateStore(t *testing.T, conn *gorm.DB, slug string) *models.Store {
	t.Helper()

	store := &models.Store{Name: "Acme", Slug: slug}
	require.NoError(t, conn.Create(store).Error)
	return store
}

func TestGetBySlugNormalizesInput(t *testing.T) {
	svc, conn := newTestService(t)
	mustCreateStore(t, conn, "acme")

	store, err := svc.GetBySlug(context.Background(), "  ACME ")
	require.NoError(t, err)
	assert.Equal(t, "acme", store.Slug)

	_, err = svc.GetBySlug(context.Background(), "missing")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateSettings(t *testing.T) {
	svc, conn := newTestService(t)
	store := mustCreateStore(t, conn, "acme")

	name := "Acme Traders"
	phone := "0244000000"
	updated, err := svc.UpdateSettings(context.Background(), store.ID, SettingsInput{
		Name:       &name,
		OwnerPhone: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Traders", updated.Name)
	require.NotNil(t, updated.OwnerPhone)
	assert.Equal(t, "0244000000", *updated.OwnerPhone)

	_, err = svc.UpdateSettings(context.Background(), store.ID, SettingsInput{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.UpdateSettings(context.Background(), uuid.New(), SettingsInput{Name: &name})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestPlatformLifecycle(t *testing.T) {
	svc, conn := newTestService(t)
	store := mustCreateStore(t, conn, "acme")

	verified, err := svc.SetVerification(context.Background(), store.ID, enums.VerificationVerified)
	require.NoError(t, err)
	assert.Equal(t, enums.VerificationVerified, verified.VerificationStatus)

	suspended, err := svc.SetStatus(context.Background(), store.ID, enums.StoreStatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, enums.StoreStatusSuspended, suspended.Status)

	upgraded, err := svc.ChangeTier(context.Background(), store.ID, enums.StoreTierPro)
	require.NoError(t, err)
	assert.Equal(t, enums.StoreTierPro, upgraded.Tier)

	_, err = svc.ChangeTier(context.Background(), store.ID, enums.StoreTier("platinum"))
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("acme"))
	assert.True(t, ValidSlug("acme-traders-2"))
	assert.False(t, ValidSlug("ac"))
	assert.False(t, ValidSlug("Acme"))
	assert.False(t, ValidSlug("acme_traders"))
	assert.False(t, ValidSlug("-acme"))
}
