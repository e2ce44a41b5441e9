package products

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/selormtech/storefront-backend/internal/audit"
	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Store{}, &models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

type recorderStub struct {
	entries []audit.Entry
}

func (r *recorderStub) Record(_ context.Context, entry audit.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recorderStub) ListByStore(context.Context, uuid.UUID, int) ([]models.AuditLog, error) {
	return nil, nil
}

func (r *recorderStub) ListRecent(context.Context, int) ([]models.AuditLog, error) {
	return nil, nil
}

func newTestService(t *testing.T) (Service, *gorm.DB, *recorderStub) {
	t.Helper()

	conn := openTestDB(t)
	rec := &recorderStub{}
	svc, err := NewService(NewRepository(conn), rec)
	require.NoError(t, err)
	return svc, conn, rec
}

func mustCreateProduct(t *testing.T, svc Service, storeID uuid.UUID, name string) *models.Product {
	t.Helper()

	product, err := svc.Create(context.Background(), storeID, CreateProductInput{
		Name:           name,
		Category:       "drinks",
		SKU:            "SKU-" + name,
		PriceRetail:    decimal.RequireFromString("12.50"),
		PriceWholesale: decimal.RequireFromString("9.00"),
		StockQty:       10,
	})
	require.NoError(t, err)
	return product
}

func TestCreateStampsStoreAndAudits(t *testing.T) {
	svc, _, rec := newTestService(t)
	storeID := uuid.New()

	product := mustCreateProduct(t, svc, storeID, "Cola")

	assert.Equal(t, storeID, product.StoreID)
	assert.NotEqual(t, uuid.Nil, product.ID)
	require.Len(t, rec.entries, 1)
	assert.Equal(t, enums.ActionProductCreated, rec.entries[0].Action)
	assert.Equal(t, product.ID.String(), rec.entries[0].EntityID)
}

func TestCrossTenantMutationIsNotFound(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ownerStore := uuid.New()
	otherStore := uuid.New()

	product := mustCreateProduct(t, svc, ownerStore, "Cola")

	_, err := svc.UpdateStock(context.Background(), product.ID, otherStore, 0)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	err = svc.Archive(context.Background(), product.ID, otherStore)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	err = svc.Delete(context.Background(), product.ID, otherStore)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Get(context.Background(), product.ID, otherStore)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))

	var untouched models.Product
	require.NoError(t, conn.First(&untouched, "id = ?", product.ID).Error)
	assert.Equal(t, 10, untouched.StockQty)
	assert.False(t, untouched.IsArchived)
}

func TestUpdateStockInOwnStore(t *testing.T) {
	svc, _, rec := newTestService(t)
	storeID := uuid.New()
	product := mustCreateProduct(t, svc, storeID, "Cola")

	updated, err := svc.UpdateStock(context.Background(), product.ID, storeID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.StockQty)

	_, err = svc.UpdateStock(context.Background(), product.ID, storeID, -1)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	require.Len(t, rec.entries, 2)
	assert.Equal(t, enums.ActionStockAdjusted, rec.entries[1].Action)
}

func TestArchiveHidesFromDefaultListing(t *testing.T) {
	svc, _, _ := newTestService(t)
	storeID := uuid.New()
	keep := mustCreateProduct(t, svc, storeID, "Cola")
	gone := mustCreateProduct(t, svc, storeID, "Fanta")

	require.NoError(t, svc.Archive(context.Background(), gone.ID, storeID))

	active, err := svc.List(context.Background(), storeID, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, keep.ID, active[0].ID)

	all, err := svc.List(context.Background(), storeID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteTwiceIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	storeID := uuid.New()
	product := mustCreateProduct(t, svc, storeID, "Cola")

	require.NoError(t, svc.Delete(context.Background(), product.ID, storeID))
	err := svc.Delete(context.Background(), product.ID, storeID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateAppliesOnlyPresentFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	storeID := uuid.New()
	product := mustCreateProduct(t, svc, storeID, "Cola")

	name := "Cola Zero"
	price := decimal.RequireFromString("15.00")
	updated, err := svc.Update(context.Background(), product.ID, storeID, UpdateProductInput{
		Name:        &name,
		PriceRetail: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "Cola Zero", updated.Name)
	assert.True(t, updated.PriceRetail.Equal(price))
	assert.Equal(t, "drinks", updated.Category)
	assert.Equal(t, 10, updated.StockQty)

	empty := "  "
	_, err = svc.Update(context.Background(), product.ID, storeID, UpdateProductInput{Name: &empty})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestImportPersistsValidRowsAroundAFailure(t *testing.T) {
	svc, _, rec := newTestService(t)
	storeID := uuid.New()

	rows := [][]string{
		{"Cola", "drinks", "12.50", "10", "fizzy", "SKU-1"},
		{"Fanta", "drinks", "not-a-price", "5", "orange", "SKU-2"},
		{"Sprite", "drinks", "11.00", "8", "lemon", "SKU-3"},
	}

	result, err := svc.Import(context.Background(), storeID, rows)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	// Data row 2 is file row 3 once the header is counted.
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Reason, "not-a-price")

	persisted, err := svc.List(context.Background(), storeID, true)
	require.NoError(t, err)
	assert.Len(t, persisted, 2)

	// One aggregate audit entry for the whole batch.
	require.Len(t, rec.entries, 1)
	assert.Equal(t, enums.ActionProductImported, rec.entries[0].Action)
	assert.Contains(t, rec.entries[0].Description, "2 imported, 1 failed")
}

func TestImportFailingLastRowStillPersistsRest(t *testing.T) {
	svc, _, _ := newTestService(t)
	storeID := uuid.New()

	rows := [][]string{
		{"Cola", "drinks", "12.50", "10", "fizzy", "SKU-1"},
		{"short row"},
	}

	result, err := svc.Import(context.Background(), storeID, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
}

func TestExportCSVHeaderAndQuoteDoubling(t *testing.T) {
	svc, _, rec := newTestService(t)
	storeID := uuid.New()

	_, err := svc.Create(context.Background(), storeID, CreateProductInput{
		Name:           `The "Best" Cola`,
		Category:       "drinks",
		SKU:            "SKU-1",
		PriceRetail:    decimal.RequireFromString("12.5"),
		PriceWholesale: decimal.RequireFromString("9"),
		StockQty:       4,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf, storeID))

	raw := buf.String()
	assert.True(t, strings.HasPrefix(raw, "ID,Name,Category,Price,Stock,Date Added,Description,SKU"))
	assert.Contains(t, raw, `"The ""Best"" Cola"`)

	records, err := csv.NewReader(strings.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `The "Best" Cola`, records[1][1])
	assert.Equal(t, "12.50", records[1][3])
	assert.Equal(t, "4", records[1][4])

	require.Len(t, rec.entries, 2)
	assert.Equal(t, enums.ActionInventoryExported, rec.entries[1].Action)
}

func TestExportExcludesOtherTenants(t *testing.T) {
	svc, _, _ := newTestService(t)
	mine := uuid.New()
	theirs := uuid.New()
	mustCreateProduct(t, svc, mine, "Cola")
	mustCreateProduct(t, svc, theirs, "Fanta")

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf, mine))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Cola", records[1][1])
}
