package payouts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
)

// Repository manages persistence for payout requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payout *models.PayoutRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error)
	FindByIDForStore(ctx context.Context, id, storeID uuid.UUID) (*models.PayoutRequest, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.PayoutRequest, error)
	ListByStatus(ctx context.Context, status enums.PayoutStatus) ([]models.PayoutRequest, error)
	// TransitionFromPending moves a pending payout into a terminal state.
	// Returns the number of rows touched: zero means the payout was missing
	// or no longer pending, which callers must disambiguate themselves.
	TransitionFromPending(ctx context.Context, id uuid.UUID, to enums.PayoutStatus, note string, processedAt time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payout repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payout *models.PayoutRequest) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error) {
	var payout models.PayoutRequest
	if err := r.db.WithContext(ctx).First(&payout, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *repository) FindByIDForStore(ctx context.Context, id, storeID uuid.UUID) (*models.PayoutRequest, error) {
	var payout models.PayoutRequest
	if err := r.db.WithContext(ctx).
		First(&payout, "id = ? AND store_id = ?", id, storeID).Error; err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.PayoutRequest, error) {
	var payouts []models.PayoutRequest
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.PayoutStatus) ([]models.PayoutRequest, error) {
	var payouts []models.PayoutRequest
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

func (r *repository) TransitionFromPending(ctx context.Context, id uuid.UUID, to enums.PayoutStatus, note string, processedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PayoutRequest{}).
		Where("id = ? AND status = ?", id, enums.PayoutStatusPending).
		Updates(map[string]any{
			"status":       to,
			"admin_note":   note,
			"processed_at": processedAt,
		})
	return result.RowsAffected, result.Error
}

// walletRepository appends ledger entries.
type walletRepository interface {
	WithTx(tx *gorm.DB) walletRepository
	Create(ctx context.Context, txn *models.WalletTransaction) error
}

type walletRepo struct {
	db *gorm.DB
}

// NewWalletRepository returns a wallet-transaction repository bound to the
// provided database.
func NewWalletRepository(db *gorm.DB) walletRepository {
	return &walletRepo{db: db}
}

func (r *walletRepo) WithTx(tx *gorm.DB) walletRepository {
	if tx == nil {
		return r
	}
	return &walletRepo{db: tx}
}

func (r *walletRepo) Create(ctx context.Context, txn *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// balanceRepository adjusts store wallet balances with guarded updates so
// concurrent transactions cannot drive a balance negative.
type balanceRepository interface {
	WithTx(tx *gorm.DB) balanceRepository
	Credit(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal) (int64, error)
	DebitIfSufficient(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal) (int64, error)
	Exists(ctx context.Context, storeID uuid.UUID) (bool, error)
}

type balanceRepo struct {
	db *gorm.DB
}

// NewBalanceRepository returns a store-balance repository bound to the
// provided database.
func NewBalanceRepository(db *gorm.DB) balanceRepository {
	return &balanceRepo{db: db}
}

func (r *balanceRepo) WithTx(tx *gorm.DB) balanceRepository {
	if tx == nil {
		return r
	}
	return &balanceRepo{db: tx}
}

func (r *balanceRepo) Credit(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		Update("wallet_balance", gorm.Expr("wallet_balance + ?", amount))
	return result.RowsAffected, result.Error
}

func (r *balanceRepo) DebitIfSufficient(ctx context.Context, storeID uuid.UUID, amount decimal.Decimal) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ? AND wallet_balance >= ?", storeID, amount).
		Update("wallet_balance", gorm.Expr("wallet_balance - ?", amount))
	return result.RowsAffected, result.Error
}

func (r *balanceRepo) Exists(ctx context.Context, storeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
