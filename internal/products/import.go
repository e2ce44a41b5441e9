package products

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/selormtech/storefront-backend/internal/audit"
	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
)

// importColumns is the expected order of fields in an uploaded inventory
// file, after the header row.
var importColumns = []string{"Name", "Category", "Price", "Stock", "Description", "SKU"}

// ImportRowError points at a single row that could not be imported. Row
// numbers are 1-indexed over the whole file, so the first data row is 2.
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult is the aggregate outcome of a bulk import. Valid rows are
// persisted even when other rows fail.
type ImportResult struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors"`
}

// Import persists each well-formed row as a product belonging to storeID.
// Rows are independent: a malformed row is reported in the result and the
// remaining rows still land. Only infrastructure failures return an error.
func (s *service) Import(ctx context.Context, storeID uuid.UUID, rows [][]string) (*ImportResult, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "import file has no data rows")
	}

	result := &ImportResult{Errors: []ImportRowError{}}
	var rowErrs error

	for i, row := range rows {
		// +2: rows are 1-indexed and the header row is row 1.
		fileRow := i + 2

		product, err := parseImportRow(storeID, row)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{Row: fileRow, Reason: err.Error()})
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("row %d: %w", fileRow, err))
			continue
		}

		if err := s.repo.Create(ctx, product); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import product row")
		}
		result.Imported++
	}

	s.auditImport(ctx, result, rowErrs)
	return result, nil
}

func parseImportRow(storeID uuid.UUID, row []string) (*models.Product, error) {
	if len(row) < len(importColumns) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(importColumns), len(row))
	}

	name := strings.TrimSpace(row[0])
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(row[2]))
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", row[2])
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("price cannot be negative")
	}

	stock, err := strconv.Atoi(strings.TrimSpace(row[3]))
	if err != nil {
		return nil, fmt.Errorf("invalid stock %q", row[3])
	}
	if stock < 0 {
		return nil, fmt.Errorf("stock cannot be negative")
	}

	return &models.Product{
		StoreID:        storeID,
		Name:           name,
		Category:       strings.TrimSpace(row[1]),
		PriceRetail:    price,
		PriceWholesale: price,
		StockQty:       stock,
		Description:    strings.TrimSpace(row[4]),
		SKU:            strings.TrimSpace(row[5]),
	}, nil
}

// auditImport records one aggregate entry for the whole batch.
func (s *service) auditImport(ctx context.Context, result *ImportResult, rowErrs error) {
	if s.recorder == nil {
		return
	}
	description := fmt.Sprintf("bulk import: %d imported, %d failed", result.Imported, result.Failed)
	if rowErrs != nil {
		description = fmt.Sprintf("%s (%v)", description, rowErrs)
	}
	_ = s.recorder.Record(ctx, audit.Entry{
		Action:      enums.ActionProductImported,
		Description: description,
		EntityType:  "product_batch",
	})
}
