// Package memory holds in-process repository implementations for local runs
// and tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"shipdesk/internal/domain"
)

// DraftRepo keeps draft records as encoded documents, so callers never share
// memory with what is stored.
type DraftRepo struct {
	docs map[string][]byte
	mu   sync.RWMutex
}

func NewDraftRepo() *DraftRepo {
	return &DraftRepo{
		docs: make(map[string][]byte),
	}
}

func (r *DraftRepo) Load(ctx context.Context, namespace string) (*domain.DraftRecord, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	r.mu.RLock()
	doc, ok := r.docs[namespace]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	var rec domain.DraftRecord
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("memory.DraftRepo.Load decode: %w", err)
	}
	return &rec, nil
}

func (r *DraftRepo) Save(ctx context.Context, namespace string, rec *domain.DraftRecord) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("memory.DraftRepo.Save encode: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[namespace] = doc
	return nil
}

func (r *DraftRepo) Delete(ctx context.Context, namespace string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, namespace)
	return nil
}

// Seed stores a raw document, e.g. one written by an older schema version.
func (r *DraftRepo) Seed(namespace string, doc []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[namespace] = doc
}
