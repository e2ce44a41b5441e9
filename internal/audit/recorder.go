package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
	"github.com/selormtech/storefront-backend/pkg/logger"
)

// PrincipalSource extracts the acting user from the request context. The
// recorder depends on this indirection so it never imports the HTTP layer.
type PrincipalSource func(ctx context.Context) (userID uuid.UUID, storeID *uuid.UUID, ok bool)

// Entry describes one activity to record.
type Entry struct {
	Action      enums.AuditAction
	Description string
	EntityType  string
	EntityID    string
	Metadata    json.RawMessage
}

// Recorder appends best-effort activity records. Auditing is a side effect
// of business actions, never a precondition: a missing principal or a
// storage failure is logged and swallowed, and Record always returns nil to
// well-formed callers.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	ListByStore(ctx context.Context, storeID uuid.UUID, limit int) ([]models.AuditLog, error)
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
}

type recorder struct {
	repo      Repository
	logg      *logger.Logger
	principal PrincipalSource
}

// NewRecorder wires an audit recorder with the provided repository and
// principal source.
func NewRecorder(repo Repository, logg *logger.Logger, principal PrincipalSource) (Recorder, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	if principal == nil {
		return nil, fmt.Errorf("principal source required")
	}
	return &recorder{repo: repo, logg: logg, principal: principal}, nil
}

func (r *recorder) Record(ctx context.Context, entry Entry) error {
	if !entry.Action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown audit action %q", entry.Action))
	}

	userID, storeID, ok := r.principal(ctx)
	if !ok || userID == uuid.Nil {
		r.warn(ctx, entry, "audit.no_principal", nil)
		return nil
	}

	row := &models.AuditLog{
		UserID:      userID,
		StoreID:     storeID,
		Action:      entry.Action,
		Description: entry.Description,
		Metadata:    entry.Metadata,
	}
	if entry.EntityType != "" {
		row.EntityType = &entry.EntityType
	}
	if entry.EntityID != "" {
		row.EntityID = &entry.EntityID
	}

	if err := r.repo.Create(ctx, row); err != nil {
		r.warn(ctx, entry, "audit.write_failed", err)
		return nil
	}
	return nil
}

func (r *recorder) ListByStore(ctx context.Context, storeID uuid.UUID, limit int) ([]models.AuditLog, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	entries, err := r.repo.ListByStore(ctx, storeID, normalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}
	return entries, nil
}

func (r *recorder) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	entries, err := r.repo.ListRecent(ctx, normalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}
	return entries, nil
}

func (r *recorder) warn(ctx context.Context, entry Entry, msg string, err error) {
	if r.logg == nil {
		return
	}
	fields := map[string]any{"action": entry.Action.String()}
	if err != nil {
		fields["error"] = err.Error()
	}
	r.logg.Warn(r.logg.WithFields(ctx, fields), msg)
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}
