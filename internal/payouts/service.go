package payouts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/selormtech/storefront-backend/internal/audit"
	"github.com/selormtech/storefront-backend/pkg/db"
	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/metrics"
)

// RequestInput captures a store's withdrawal request.
type RequestInput struct {
	Amount      decimal.Decimal
	Method      enums.PayoutMethod
	Destination string
}

// Service is the payout state machine: pending requests either get approved
// or rejected, both terminal. The wallet is debited when the request is
// created, so a rejection must atomically refund it.
type Service interface {
	Request(ctx context.Context, storeID uuid.UUID, input RequestInput) (*models.PayoutRequest, error)
	Approve(ctx context.Context, payoutID uuid.UUID, note string) (*models.PayoutRequest, error)
	Reject(ctx context.Context, payoutID uuid.UUID, reason string) (*models.PayoutRequest, error)
	GetForStore(ctx context.Context, payoutID, storeID uuid.UUID) (*models.PayoutRequest, error)
	ListForStore(ctx context.Context, storeID uuid.UUID) ([]models.PayoutRequest, error)
	ListPending(ctx context.Context) ([]models.PayoutRequest, error)
}

type service struct {
	conn     *gorm.DB
	payouts  Repository
	wallet   walletRepository
	balances balanceRepository
	recorder audit.Recorder
	ledger   *metrics.LedgerMetrics
	now      func() time.Time
}

// NewService wires the payout ledger with its repositories. The audit
// recorder and metrics may be nil in tests.
func NewService(conn *gorm.DB, payouts Repository, wallet walletRepository, balances balanceRepository, recorder audit.Recorder, ledger *metrics.LedgerMetrics) (Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("db connection required")
	}
	if payouts == nil || wallet == nil || balances == nil {
		return nil, fmt.Errorf("payout repositories required")
	}
	return &service{
		conn:     conn,
		payouts:  payouts,
		wallet:   wallet,
		balances: balances,
		recorder: recorder,
		ledger:   ledger,
		now:      time.Now,
	}, nil
}

// Request debits the wallet and opens a pending payout in one transaction.
// A rejection later refunds the same amount, which keeps the ledger
// reconciliation invariant intact across the request's whole lifecycle.
func (s *service) Request(ctx context.Context, storeID uuid.UUID, input RequestInput) (*models.PayoutRequest, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout amount must be positive")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payout method")
	}
	destination := strings.TrimSpace(input.Destination)
	if destination == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout destination required")
	}

	payout := &models.PayoutRequest{
		ID:          uuid.New(),
		StoreID:     storeID,
		Amount:      input.Amount,
		Status:      enums.PayoutStatusPending,
		Method:      input.Method,
		Destination: destination,
	}

	err := db.RunInTx(s.conn.WithContext(ctx), func(tx *gorm.DB) error {
		balances := s.balances.WithTx(tx)

		rows, err := balances.DebitIfSufficient(ctx, storeID, input.Amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit wallet")
		}
		if rows == 0 {
			exists, err := balances.Exists(ctx, storeID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
			}
			if !exists {
				return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
			}
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient wallet balance")
		}

		if err := s.payouts.WithTx(tx).Create(ctx, payout); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payout request")
		}

		debit := &models.WalletTransaction{
			StoreID:     storeID,
			Amount:      input.Amount.Neg(),
			Type:        enums.WalletTransactionWithdrawal,
			Description: fmt.Sprintf("payout requested to %s", destination),
			ReferenceID: &payout.ID,
		}
		if err := s.wallet.WithTx(tx).Create(ctx, debit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record wallet debit")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, enums.ActionPayoutRequested, payout, fmt.Sprintf("payout of %s requested", payout.Amount.StringFixed(2)))
	return payout, nil
}

// Approve moves a pending payout to approved. It is the authorization
// checkpoint only; the actual transfer happens out of band.
func (s *service) Approve(ctx context.Context, payoutID uuid.UUID, note string) (*models.PayoutRequest, error) {
	if payoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout id required")
	}

	var approved *models.PayoutRequest
	err := db.RunInTx(s.conn.WithContext(ctx), func(tx *gorm.DB) error {
		payouts := s.payouts.WithTx(tx)

		rows, err := payouts.TransitionFromPending(ctx, payoutID, enums.PayoutStatusApproved, note, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve payout")
		}
		if rows == 0 {
			return s.classifyMissedTransition(ctx, payouts, payoutID, enums.PayoutStatusApproved)
		}

		approved, err = payouts.FindByID(ctx, payoutID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload payout")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.transitionMetric(enums.PayoutStatusApproved)
	s.audit(ctx, enums.ActionPayoutApproved, approved, fmt.Sprintf("payout of %s approved", approved.Amount.StringFixed(2)))
	return approved, nil
}

// Reject is atomic across four effects: the pending check, the status flip,
// the compensating refund entry, and the balance credit. Either all commit
// or none do.
func (s *service) Reject(ctx context.Context, payoutID uuid.UUID, reason string) (*models.PayoutRequest, error) {
	if payoutID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout id required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}

	var rejected *models.PayoutRequest
	err := db.RunInTx(s.conn.WithContext(ctx), func(tx *gorm.DB) error {
		payouts := s.payouts.WithTx(tx)

		rows, err := payouts.TransitionFromPending(ctx, payoutID, enums.PayoutStatusRejected, reason, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject payout")
		}
		if rows == 0 {
			return s.classifyMissedTransition(ctx, payouts, payoutID, enums.PayoutStatusRejected)
		}

		rejected, err = payouts.FindByID(ctx, payoutID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload payout")
		}

		refund := &models.WalletTransaction{
			StoreID:     rejected.StoreID,
			Amount:      rejected.Amount,
			Type:        enums.WalletTransactionRefund,
			Description: fmt.Sprintf("payout rejected: %s", reason),
			ReferenceID: &rejected.ID,
		}
		if err := s.wallet.WithTx(tx).Create(ctx, refund); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record refund")
		}

		credited, err := s.balances.WithTx(tx).Credit(ctx, rejected.StoreID, rejected.Amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet")
		}
		if credited == 0 {
			return pkgerrors.New(pkgerrors.CodeDependency, "payout store vanished during refund")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.transitionMetric(enums.PayoutStatusRejected)
	s.audit(ctx, enums.ActionPayoutRejected, rejected, fmt.Sprintf("payout of %s rejected: %s", rejected.Amount.StringFixed(2), reason))
	return rejected, nil
}

func (s *service) GetForStore(ctx context.Context, payoutID, storeID uuid.UUID) (*models.PayoutRequest, error) {
	if payoutID == uuid.Nil || storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout id and store id required")
	}
	payout, err := s.payouts.FindByIDForStore(ctx, payoutID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout")
	}
	return payout, nil
}

func (s *service) ListForStore(ctx context.Context, storeID uuid.UUID) ([]models.PayoutRequest, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	payouts, err := s.payouts.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payouts")
	}
	return payouts, nil
}

func (s *service) ListPending(ctx context.Context) ([]models.PayoutRequest, error) {
	payouts, err := s.payouts.ListByStatus(ctx, enums.PayoutStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending payouts")
	}
	return payouts, nil
}

// classifyMissedTransition distinguishes a payout that never existed from
// one that already reached a terminal state. Runs inside the same
// transaction as the attempted update.
func (s *service) classifyMissedTransition(ctx context.Context, payouts Repository, payoutID uuid.UUID, to enums.PayoutStatus) error {
	payout, err := payouts.FindByID(ctx, payoutID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout")
	}
	s.conflictMetric(to)
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("payout is %s, only pending payouts can change state", payout.Status)).
		WithDetails(map[string]any{"status": payout.Status.String()})
}

func (s *service) audit(ctx context.Context, action enums.AuditAction, payout *models.PayoutRequest, description string) {
	if s.recorder == nil || payout == nil {
		return
	}
	_ = s.recorder.Record(ctx, audit.Entry{
		Action:      action,
		Description: description,
		EntityType:  "payout_request",
		EntityID:    payout.ID.String(),
	})
}

func (s *service) transitionMetric(to enums.PayoutStatus) {
	if s.ledger != nil {
		s.ledger.IncTransition(to.String())
	}
}

func (s *service) conflictMetric(to enums.PayoutStatus) {
	if s.ledger != nil {
		s.ledger.IncConflict(to.String())
	}
}
