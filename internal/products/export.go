package products

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/selormtech/storefront-backend/internal/audit"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
)

var exportHeader = []string{"ID", "Name", "Category", "Price", "Stock", "Date Added", "Description", "SKU"}

// ExportFilename names an inventory download for the given day, e.g.
// inventory_2026-08-29.csv.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("inventory_%s.csv", now.UTC().Format("2006-01-02"))
}

// ExportCSV streams the store's full inventory, archived rows included, as
// CSV. encoding/csv doubles embedded quotes per RFC 4180.
func (s *service) ExportCSV(ctx context.Context, w io.Writer, storeID uuid.UUID) error {
	if storeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	items, err := s.repo.ListByStore(ctx, storeID, true)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv header")
	}
	for _, item := range items {
		record := []string{
			item.ID.String(),
			item.Name,
			item.Category,
			item.PriceRetail.StringFixed(2),
			strconv.Itoa(item.StockQty),
			item.CreatedAt.UTC().Format("2006-01-02"),
			item.Description,
			item.SKU,
		}
		if err := writer.Write(record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv row")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}

	if s.recorder != nil {
		_ = s.recorder.Record(ctx, audit.Entry{
			Action:      enums.ActionInventoryExported,
			Description: fmt.Sprintf("exported %d inventory rows", len(items)),
			EntityType:  "inventory",
		})
	}
	return nil
}
