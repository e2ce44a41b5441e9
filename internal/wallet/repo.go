package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/pagination"
)

type repo struct {
	db *gorm.DB
}

// NewRepository returns a wallet read repository bound to the provided
// database.
func NewRepository(db *gorm.DB) repository {
	return &repo{db: db}
}

func (r *repo) ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletTransaction, error) {
	query := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var txns []models.WalletTransaction
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repo) SumByStore(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, int64, error) {
	var txns []models.WalletTransaction
	if err := r.db.WithContext(ctx).
		Select("amount").
		Where("store_id = ?", storeID).
		Find(&txns).Error; err != nil {
		return decimal.Zero, 0, err
	}
	sum := decimal.Zero
	for _, txn := range txns {
		sum = sum.Add(txn.Amount)
	}
	return sum, int64(len(txns)), nil
}

func (r *repo) StoreBalance(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Select("wallet_balance").
		First(&store, "id = ?", storeID).Error; err != nil {
		return decimal.Zero, err
	}
	return store.WalletBalance, nil
}
