package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
)

type fakeRepository struct {
	created  []*models.AuditLog
	createFn func(ctx context.Context, entry *models.AuditLog) error
}

func (f *fakeRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	f.created = append(f.created, entry)
	return nil
}

func (f *fakeRepository) ListByStore(ctx context.Context, storeID uuid.UUID, limit int) ([]models.AuditLog, error) {
	return nil, nil
}

func (f *fakeRepository) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	return nil, nil
}

func principalSource(userID uuid.UUID, storeID *uuid.UUID, ok bool) PrincipalSource {
	return func(context.Context) (uuid.UUID, *uuid.UUID, bool) {
		return userID, storeID, ok
	}
}

func TestRecordWritesOneRowForResolvedPrincipal(t *testing.T) {
	repo := &fakeRepository{}
	userID := uuid.New()
	storeID := uuid.New()
	rec, err := NewRecorder(repo, nil, principalSource(userID, &storeID, true))
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	err = rec.Record(context.Background(), Entry{
		Action:      enums.ActionProductCreated,
		Description: "created product Shea Butter",
		EntityType:  "product",
		EntityID:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected exactly one audit row, got %d", len(repo.created))
	}
	row := repo.created[0]
	if row.UserID != userID {
		t.Fatalf("audit row attributed to wrong user: %s", row.UserID)
	}
	if row.StoreID == nil || *row.StoreID != storeID {
		t.Fatalf("audit row missing store scope: %v", row.StoreID)
	}
	if row.Action != enums.ActionProductCreated {
		t.Fatalf("unexpected action %q", row.Action)
	}
}

func TestRecordWithoutPrincipalSkipsWrite(t *testing.T) {
	repo := &fakeRepository{}
	rec, err := NewRecorder(repo, nil, principalSource(uuid.Nil, nil, false))
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	if err := rec.Record(context.Background(), Entry{Action: enums.ActionUserLogin}); err != nil {
		t.Fatalf("record without principal must not error, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no audit rows, got %d", len(repo.created))
	}
}

func TestRecordSwallowsStorageFailures(t *testing.T) {
	repo := &fakeRepository{
		createFn: func(context.Context, *models.AuditLog) error {
			return errors.New("storage unavailable")
		},
	}
	storeID := uuid.New()
	rec, err := NewRecorder(repo, nil, principalSource(uuid.New(), &storeID, true))
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	if err := rec.Record(context.Background(), Entry{Action: enums.ActionPayoutApproved}); err != nil {
		t.Fatalf("audit write failure must not propagate, got %v", err)
	}
}

func TestRecordRejectsUnknownActions(t *testing.T) {
	repo := &fakeRepository{}
	rec, err := NewRecorder(repo, nil, principalSource(uuid.New(), nil, true))
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	if err := rec.Record(context.Background(), Entry{Action: enums.AuditAction("made_up")}); err == nil {
		t.Fatal("expected validation error for unknown action")
	}
	if len(repo.created) != 0 {
		t.Fatal("unknown action must not be persisted")
	}
}
