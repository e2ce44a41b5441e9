package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/selormtech/storefront-backend/internal/audit"
	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
)

// CreateProductInput captures the fields a store can set on a new listing.
type CreateProductInput struct {
	SKU            string
	Name           string
	Category       string
	Description    string
	Image          *string
	PriceRetail    decimal.Decimal
	PriceWholesale decimal.Decimal
	StockQty       int
}

// UpdateProductInput mutates only the fields that are present.
type UpdateProductInput struct {
	SKU            *string
	Name           *string
	Category       *string
	Description    *string
	Image          *string
	PriceRetail    *decimal.Decimal
	PriceWholesale *decimal.Decimal
	StockQty       *int
}

// Service is the tenant-scoped product mutator. Every operation stamps or
// filters on the caller's store id; a row that belongs to another tenant
// reads as missing.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*models.Product, error)
	Get(ctx context.Context, id, storeID uuid.UUID) (*models.Product, error)
	List(ctx context.Context, storeID uuid.UUID, includeArchived bool) ([]models.Product, error)
	Update(ctx context.Context, id, storeID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	UpdateStock(ctx context.Context, id, storeID uuid.UUID, stockQty int) (*models.Product, error)
	Archive(ctx context.Context, id, storeID uuid.UUID) error
	Delete(ctx context.Context, id, storeID uuid.UUID) error
	Import(ctx context.Context, storeID uuid.UUID, rows [][]string) (*ImportResult, error)
	ExportCSV(ctx context.Context, w io.Writer, storeID uuid.UUID) error
}

type service struct {
	repo     Repository
	recorder audit.Recorder
}

// NewService wires a product service. The recorder may be nil in tests.
func NewService(repo Repository, recorder audit.Recorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo, recorder: recorder}, nil
}

func validateCreate(input *CreateProductInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.PriceRetail.IsNegative() || input.PriceWholesale.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
	}
	if input.StockQty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	return nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateProductInput) (*models.Product, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	product := &models.Product{
		StoreID:        storeID,
		SKU:            strings.TrimSpace(input.SKU),
		Name:           input.Name,
		Category:       strings.TrimSpace(input.Category),
		Description:    input.Description,
		Image:          input.Image,
		PriceRetail:    input.PriceRetail,
		PriceWholesale: input.PriceWholesale,
		StockQty:       input.StockQty,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	s.audit(ctx, enums.ActionProductCreated, product.ID, fmt.Sprintf("created product %q", product.Name))
	return product, nil
}

func (s *service) Get(ctx context.Context, id, storeID uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil || storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id and store id required")
	}
	product, err := s.repo.FindForStore(ctx, id, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID, includeArchived bool) ([]models.Product, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	items, err := s.repo.ListByStore(ctx, storeID, includeArchived)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return items, nil
}

func (s *service) Update(ctx context.Context, id, storeID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, id, storeID)
	if err != nil {
		return nil, err
	}

	if input.SKU != nil {
		product.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
		}
		product.Name = name
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Image != nil {
		product.Image = input.Image
	}
	if input.PriceRetail != nil {
		if input.PriceRetail.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
		}
		product.PriceRetail = *input.PriceRetail
	}
	if input.PriceWholesale != nil {
		if input.PriceWholesale.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "prices cannot be negative")
		}
		product.PriceWholesale = *input.PriceWholesale
	}
	if input.StockQty != nil {
		if *input.StockQty < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		product.StockQty = *input.StockQty
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	s.audit(ctx, enums.ActionProductUpdated, product.ID, fmt.Sprintf("updated product %q", product.Name))
	return product, nil
}

func (s *service) UpdateStock(ctx context.Context, id, storeID uuid.UUID, stockQty int) (*models.Product, error) {
	if id == uuid.Nil || storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id and store id required")
	}
	if stockQty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	rows, err := s.repo.UpdateStock(ctx, id, storeID, stockQty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	s.audit(ctx, enums.ActionStockAdjusted, id, fmt.Sprintf("stock set to %d", stockQty))
	return s.Get(ctx, id, storeID)
}

func (s *service) Archive(ctx context.Context, id, storeID uuid.UUID) error {
	if id == uuid.Nil || storeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id and store id required")
	}
	rows, err := s.repo.Archive(ctx, id, storeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "archive product")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	s.audit(ctx, enums.ActionProductArchived, id, "archived product")
	return nil
}

func (s *service) Delete(ctx context.Context, id, storeID uuid.UUID) error {
	if id == uuid.Nil || storeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id and store id required")
	}
	rows, err := s.repo.Delete(ctx, id, storeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	s.audit(ctx, enums.ActionProductDeleted, id, "deleted product")
	return nil
}

func (s *service) audit(ctx context.Context, action enums.AuditAction, productID uuid.UUID, description string) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, audit.Entry{
		Action:      action,
		Description: description,
		EntityType:  "product",
		EntityID:    productID.String(),
	})
}
