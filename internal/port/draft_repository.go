package port

import (
	"context"

	"shipdesk/internal/domain"
)

// DraftRepository persists the draft record under a fixed namespace.
type DraftRepository interface {
	// Load returns domain.ErrNotFound when nothing is stored for namespace.
	Load(ctx context.Context, namespace string) (*domain.DraftRecord, error)
	Save(ctx context.Context, namespace string, record *domain.DraftRecord) error
	Delete(ctx context.Context, namespace string) error
}
