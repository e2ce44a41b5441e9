package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/selormtech/storefront-backend/api/responses"
	"github.com/selormtech/storefront-backend/api/validators"
	productsvc "github.com/selormtech/storefront-backend/internal/products"
	storesvc "github.com/selormtech/storefront-backend/internal/stores"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/logger"
)

// importMaxRows bounds a single upload; larger catalogs go in batches.
const importMaxRows = 5000

type productRequest struct {
	SKU            string  `json:"sku"`
	Name           string  `json:"name" validate:"required"`
	Category       string  `json:"category"`
	Description    string  `json:"description"`
	Image          *string `json:"image,omitempty"`
	PriceRetail    string  `json:"price_retail" validate:"required"`
	PriceWholesale string  `json:"price_wholesale"`
	StockQty       int     `json:"stock_qty" validate:"gte=0"`
}

type productUpdateRequest struct {
	SKU            *string `json:"sku,omitempty"`
	Name           *string `json:"name,omitempty"`
	Category       *string `json:"category,omitempty"`
	Description    *string `json:"description,omitempty"`
	Image          *string `json:"image,omitempty"`
	PriceRetail    *string `json:"price_retail,omitempty"`
	PriceWholesale *string `json:"price_wholesale,omitempty"`
	StockQty       *int    `json:"stock_qty,omitempty" validate:"omitempty,gte=0"`
}

type stockRequest struct {
	StockQty int `json:"stock_qty" validate:"gte=0"`
}

func parsePrice(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal string").
			WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

// CreateProduct adds a product to the caller's store.
func CreateProduct(svc productsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		retail, err := parsePrice(payload.PriceRetail, "price_retail")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		wholesale, err := parsePrice(payload.PriceWholesale, "price_wholesale")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if wholesale.IsZero() {
			wholesale = retail
		}

		product, err := svc.Create(r.Context(), storeID, productsvc.CreateProductInput{
			SKU:            payload.SKU,
			Name:           payload.Name,
			Category:       payload.Category,
			Description:    payload.Description,
			Image:          payload.Image,
			PriceRetail:    retail,
			PriceWholesale: wholesale,
			StockQty:       payload.StockQty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ListProducts returns the store's catalog. ?include_archived=true widens
// the listing to archived rows.
func ListProducts(svc productsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		includeArchived := r.URL.Query().Get("include_archived") == "true"
		items, err := svc.List(r.Context(), storeID, includeArchived)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// GetProduct returns one product of the caller's store.
func GetProduct(svc productsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id, storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// UpdateProduct applies a partial update to one product.
func UpdateProduct(svc productsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := productsvc.UpdateProductInput{
			SKU:         payload.SKU,
			Name:        payload.Name,
			Category:    payload.Category,
			Description: payload.Description,
			Image:       payload.Image,
			StockQty:    payload.StockQty,
		}
		if payload.PriceRetail != nil {
			price, err := parsePrice(*payload.PriceRetail, "price_retail")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.PriceRetail = &price
		}
		if payload.PriceWholesale != nil {
			price, err := parsePrice(*payload.PriceWholesale, "price_wholesale")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.PriceWholesale = &price
		}

		product, err := svc.Update(r.Context(), id, storeID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// UpdateStock sets a product's absolute stock count.
func UpdateStock(svc productsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateStock(r.Context(), id, storeID, payload.StockQty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ArchiveProduct hides a product from active listings without deleting it.
func ArchiveProduct(svc productsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Archive(r.Context(), id, storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "archived"})
	}
}

// DeleteProduct removes a product permanently.
func DeleteProduct(svc productsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id, storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ImportProducts ingests a CSV upload. The first row is a header and is
// skipped; per-row failures are reported in the result, not as request
// failures.
func ImportProducts(svc productsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reader := csv.NewReader(r.Body)
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable csv upload"))
			return
		}
		if len(records) < 2 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "upload needs a header row and at least one data row"))
			return
		}
		if len(records) > importMaxRows+1 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("upload exceeds %d rows", importMaxRows)))
			return
		}

		result, err := svc.Import(r.Context(), storeID, records[1:])
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ExportInventory streams the store's inventory as a CSV download.
func ExportInventory(svc productsvc.Service, storeSvc storesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := tenantStoreID(r, storeSvc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := productsvc.ExportFilename(time.Now())
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

		if err := svc.ExportCSV(r.Context(), w, storeID); err != nil {
			// Headers may already be out; log instead of double-writing.
			logg.Error(r.Context(), "inventory.export_failed", err)
		}
	}
}
