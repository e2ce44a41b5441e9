package staff

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/selormtech/storefront-backend/pkg/config"
	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/security"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(conn, config.PasswordConfig{}, nil)
	require.NoError(t, err)
	return svc, conn
}

func TestCreateStaffIssuesUsableTempPassword(t *testing.T) {
	svc, conn := newTestService(t)
	storeID := uuid.New()

	created, err := svc.Create(context.Background(), storeID, CreateStaffInput{
		Email: "Kofi@Example.com",
		Name:  "Kofi",
		Role:  enums.UserRoleStaff,
	})
	require.NoError(t, err)

	assert.Equal(t, "kofi@example.com", created.User.Email)
	require.NotNil(t, created.User.StoreID)
	assert.Equal(t, storeID, *created.User.StoreID)
	assert.NotEmpty(t, created.TempPassword)

	var stored models.User
	require.NoError(t, conn.First(&stored, "id = ?", created.User.ID).Error)
	ok, err := security.VerifyPassword(created.TempPassword, stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateStaffRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	storeID := uuid.New()

	_, err := svc.Create(context.Background(), storeID, CreateStaffInput{
		Email: "kofi@example.com",
		Name:  "Kofi",
		Role:  enums.UserRoleStaff,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), storeID, CreateStaffInput{
		Email: "kofi@example.com",
		Name:  "Kofi Again",
		Role:  enums.UserRoleManager,
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestCreateStaffRejectsOwnerRole(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), uuid.New(), CreateStaffInput{
		Email: "kofi@example.com",
		Name:  "Kofi",
		Role:  enums.UserRoleOwner,
	})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestRemoveNeverTouchesOwners(t *testing.T) {
	svc, conn := newTestService(t)
	storeID := uuid.New()

	owner := &models.User{
		Email:   "owner@example.com",
		Name:    "Owner",
		Role:    enums.UserRoleOwner,
		StoreID: &storeID,
	}
	require.NoError(t, conn.Create(owner).Error)

	err := svc.Remove(context.Background(), owner.ID, storeID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	var count int64
	require.NoError(t, conn.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRemoveIsTenantScoped(t *testing.T) {
	svc, _ := newTestService(t)
	storeID := uuid.New()

	created, err := svc.Create(context.Background(), storeID, CreateStaffInput{
		Email: "kofi@example.com",
		Name:  "Kofi",
		Role:  enums.UserRoleStaff,
	})
	require.NoError(t, err)

	err = svc.Remove(context.Background(), created.User.ID, uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.Remove(context.Background(), created.User.ID, storeID))
}

func TestListHidesPasswordHashes(t *testing.T) {
	svc, _ := newTestService(t)
	storeID := uuid.New()

	_, err := svc.Create(context.Background(), storeID, CreateStaffInput{
		Email: "kofi@example.com",
		Name:  "Kofi",
		Role:  enums.UserRoleStaff,
	})
	require.NoError(t, err)

	users, err := svc.List(context.Background(), storeID)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].PasswordHash)
}
