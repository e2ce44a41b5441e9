package updates

import (
	"context"
	"testing"

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
	if err := conn.AutoMigrate(&models.SystemUpdate{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(conn, nil)
	require.NoError(t, err)
	return svc
}

func TestBroadcastAndList(t *testing.T) {
	svc := newTestService(t)

	update, err := svc.Broadcast(context.Background(), BroadcastInput{
		Title:   "Maintenance window",
		Version: "1.4.0",
		Content: "Expect downtime Saturday 02:00 GMT.",
	})
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", update.Version)

	items, err := svc.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Maintenance window", items[0].Title)
}

func TestBroadcastValidation(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Broadcast(context.Background(), BroadcastInput{Title: "  ", Content: "body"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.Broadcast(context.Background(), BroadcastInput{Title: "t", Content: " "})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}
