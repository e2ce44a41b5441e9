package updates

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/selormtech/storefront-backend/internal/audit"
	"github.com/selormtech/storefront-backend/pkg/db/models"
	"github.com/selormtech/storefront-backend/pkg/enums"
	pkgerrors "github.com/selormtech/storefront-backend/pkg/errors"
)

// BroadcastInput is a platform-wide announcement to every store admin.
type BroadcastInput struct {
	Title   string
	Version string
	Content string
}

// Service manages system updates. Broadcasts are append-only.
type Service interface {
	Broadcast(ctx context.Context, input BroadcastInput) (*models.SystemUpdate, error)
	List(ctx context.Context, limit int) ([]models.SystemUpdate, error)
}

type service struct {
	db       *gorm.DB
	recorder audit.Recorder
}

// NewService wires a system-update service. The recorder may be nil in tests.
func NewService(db *gorm.DB, recorder audit.Recorder) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection required")
	}
	return &service{db: db, recorder: recorder}, nil
}

func (s *service) Broadcast(ctx context.Context, input BroadcastInput) (*models.SystemUpdate, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and content required")
	}

	update := &models.SystemUpdate{
		Title:   title,
		Version: strings.TrimSpace(input.Version),
		Content: content,
	}
	if err := s.db.WithContext(ctx).Create(update).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create system update")
	}

	if s.recorder != nil {
		_ = s.recorder.Record(ctx, audit.Entry{
			Action:      enums.ActionUpdateBroadcast,
			Description: fmt.Sprintf("broadcast %q", title),
			EntityType:  "system_update",
			EntityID:    update.ID.String(),
		})
	}
	return update, nil
}

func (s *service) List(ctx context.Context, limit int) ([]models.SystemUpdate, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var items []models.SystemUpdate
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list system updates")
	}
	return items, nil
}
