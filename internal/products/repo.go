package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/selormtech/storefront-backend/pkg/db/models"
)

// Repository manages persistence for products. Every lookup that mutates or
// returns a single row keys on (id, store_id) so one tenant can never reach
// another tenant's rows.
type Repository interface {
	Create(ctx context.Context, product *models.Product) error
	FindForStore(ctx context.Context, id, storeID uuid.UUID) (*models.Product, error)
	ListByStore(ctx context.Context, storeID uuid.UUID, includeArchived bool) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	UpdateStock(ctx context.Context, id, storeID uuid.UUID, stockQty int) (int64, error)
	Archive(ctx context.Context, id, storeID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id, storeID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a product repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) FindForStore(ctx context.Context, id, storeID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		First(&product, "id = ? AND store_id = ?", id, storeID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListByStore(ctx context.Context, storeID uuid.UUID, includeArchived bool) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}
	var items []models.Product
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *repository) UpdateStock(ctx context.Context, id, storeID uuid.UUID, stockQty int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store_id = ?", id, storeID).
		Update("stock_qty", stockQty)
	return result.RowsAffected, result.Error
}

func (r *repository) Archive(ctx context.Context, id, storeID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND store_id = ?", id, storeID).
		Update("is_archived", true)
	return result.RowsAffected, result.Error
}

func (r *repository) Delete(ctx context.Context, id, storeID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		Delete(&models.Product{})
	return result.RowsAffected, result.Error
}
