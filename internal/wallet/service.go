package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/selormtech/storefront-backend/pkg/db/models"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/pagination"
)

// Summary is a store's wallet balance next to what the ledger says it
// should be. Drift signals a write that bypassed the ledger.
type Summary struct {
	Balance      decimal.Decimal `json:"balance"`
	LedgerSum    decimal.Decimal `json:"ledger_sum"`
	Transactions int64           `json:"transactions"`
}

// TransactionPage is one keyset page of the ledger, newest first.
type TransactionPage struct {
	Transactions []models.WalletTransaction `json:"transactions"`
	NextCursor   string                     `json:"next_cursor,omitempty"`
}

// Service exposes read-side wallet operations. All writes go through the
// payout ledger.
type Service interface {
	ListTransactions(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*TransactionPage, error)
	Summarize(ctx context.Context, storeID uuid.UUID) (*Summary, error)
}

type repository interface {
	ListByStore(ctx context.Context, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.WalletTransaction, error)
	SumByStore(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, int64, error)
	StoreBalance(ctx context.Context, storeID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	repo repository
}

// NewService wires a wallet read service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListTransactions(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*TransactionPage, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	txns, err := s.repo.ListByStore(ctx, storeID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
	}

	page := &TransactionPage{Transactions: txns}
	if len(txns) > limit {
		page.Transactions = txns[:limit]
		last := page.Transactions[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) Summarize(ctx context.Context, storeID uuid.UUID) (*Summary, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}

	balance, err := s.repo.StoreBalance(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store balance")
	}

	sum, count, err := s.repo.SumByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum ledger")
	}

	return &Summary{Balance: balance, LedgerSum: sum, Transactions: count}, nil
}
