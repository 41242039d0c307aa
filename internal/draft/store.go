// Package draft owns the in-progress shipment draft, its entry mode and its
// provenance map.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"reflect"
	"sync"
	"time"

	"shipdesk/internal/domain"
	"shipdesk/internal/payload"
	"shipdesk/internal/port"
	"shipdesk/internal/reconcile"
)

// SchemaVersion is the version written with every persisted record.
const SchemaVersion = 1

// Store is the single writer for a draft namespace. Every mutation is
// persisted before it becomes visible, so readers never observe a state that
// was not stored. Draft and provenance always change together.
type Store struct {
	mu        sync.RWMutex
	repo      port.DraftRepository
	namespace string
	state     domain.DraftState
	now       func() time.Time

	inFlight bool
	active   uint64
	seq      uint64
}

// NewStore creates a Store holding the empty draft. Call Load to restore the
// persisted one.
func NewStore(repo port.DraftRepository, namespace string) *Store {
	return &Store{
		repo:      repo,
		namespace: namespace,
		state:     domain.NewDraftState(),
		now:       time.Now,
	}
}

// Load restores the persisted record, migrating older schema versions.
// A missing record leaves the empty draft in place.
func (s *Store) Load(ctx context.Context) error {
	rec, err := s.repo.Load(ctx, s.namespace)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading draft: %w", err)
	}

	state, err := migrate(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	log.Printf("draft.Store.Load: restored %s (schema v%d, %d package(s), %d auto-filled field(s))",
		s.namespace, rec.SchemaVersion, len(state.Draft.Packages), len(state.Provenance))
	return nil
}

// migrate upgrades a persisted record to the current in-memory shape.
// Version 0 records predate versioning and may carry null collections.
func migrate(rec *domain.DraftRecord) (domain.DraftState, error) {
	if rec.SchemaVersion > SchemaVersion {
		return domain.DraftState{}, fmt.Errorf("draft schema version %d is newer than supported version %d", rec.SchemaVersion, SchemaVersion)
	}
	state := domain.DraftState{
		Mode:       rec.Mode,
		Draft:      rec.Draft,
		Provenance: rec.Provenance,
	}
	if !state.Mode.Valid() {
		state.Mode = domain.EntryModeManual
	}
	if state.Provenance == nil {
		state.Provenance = domain.ProvenanceMap{}
	}
	state.Draft.Normalize()
	return state, nil
}

// State returns a deep copy of the current state.
func (s *Store) State() domain.DraftState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// InProgress reports whether an extraction is in flight.
func (s *Store) InProgress() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight
}

// IsAutoFilled reports whether path was filled by the latest merge and has not
// been edited since.
func (s *Store) IsAutoFilled(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Provenance[path]
}

// SetMode switches between manual and document-assisted entry.
func (s *Store) SetMode(ctx context.Context, mode domain.EntryMode) error {
	if !mode.Valid() {
		return domain.ErrInvalidMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	next.Mode = mode
	return s.commit(ctx, next)
}

// ReplaceDraft swaps in a whole draft, e.g. when seeding from an existing
// record. An in-flight extraction is superseded.
func (s *Store) ReplaceDraft(ctx context.Context, d domain.ShipmentDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	next.Draft = d.Clone()
	next.Draft.Normalize()
	next.Provenance = keepUnchanged(s.state.Provenance, s.state.Draft, next.Draft)
	if err := s.commit(ctx, next); err != nil {
		return err
	}
	s.supersede()
	return nil
}

// PatchDraft applies a shallow top-level merge: each key present in patch
// replaces that whole top-level field. Auto-filled marks on values the patch
// changed are dropped, since those values are now manual.
func (s *Store) PatchDraft(ctx context.Context, patch json.RawMessage) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil || fields == nil {
		return domain.ErrInvalidPatch
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	patched, err := applyPatch(s.state.Draft, fields)
	if err != nil {
		return err
	}

	next := s.state.Clone()
	next.Draft = patched
	next.Provenance = keepUnchanged(s.state.Provenance, s.state.Draft, patched)
	return s.commit(ctx, next)
}

func applyPatch(current domain.ShipmentDraft, fields map[string]json.RawMessage) (domain.ShipmentDraft, error) {
	raw, err := json.Marshal(current)
	if err != nil {
		return domain.ShipmentDraft{}, fmt.Errorf("encoding draft: %w", err)
	}
	var base map[string]json.RawMessage
	if err := json.Unmarshal(raw, &base); err != nil {
		return domain.ShipmentDraft{}, fmt.Errorf("decoding draft: %w", err)
	}
	for k, v := range fields {
		if _, known := base[k]; known {
			base[k] = v
		}
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return domain.ShipmentDraft{}, fmt.Errorf("encoding patched draft: %w", err)
	}
	var out domain.ShipmentDraft
	if err := json.Unmarshal(merged, &out); err != nil {
		return domain.ShipmentDraft{}, fmt.Errorf("%w: %v", domain.ErrInvalidPatch, err)
	}
	out.Normalize()
	return out, nil
}

// MergeExtracted reconciles p into the draft and replaces the provenance map
// with exactly the paths the merge filled. It returns those paths.
func (s *Store) MergeExtracted(ctx context.Context, p payload.Payload) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergeLocked(ctx, p)
}

func (s *Store) mergeLocked(ctx context.Context, p payload.Payload) ([]string, error) {
	merged, filled := reconcile.Merge(s.state.Draft, p)

	next := s.state.Clone()
	next.Draft = merged
	next.Provenance = reconcile.ToMap(filled)
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return filled, nil
}

// BeginExtraction marks an extraction as in flight and returns its ticket.
// Only one extraction may run at a time.
func (s *Store) BeginExtraction() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return 0, domain.ErrExtractionInProgress
	}
	s.seq++
	s.active = s.seq
	s.inFlight = true
	return s.active, nil
}

// EndExtraction clears the in-progress flag if ticket is still the active one.
func (s *Store) EndExtraction(ticket uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == ticket {
		s.supersede()
	}
}

// CommitExtraction merges the result of the extraction identified by ticket.
// Results of superseded extractions are discarded with
// domain.ErrStaleExtraction and leave the draft untouched.
func (s *Store) CommitExtraction(ctx context.Context, ticket uint64, p payload.Payload) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inFlight || s.active != ticket {
		return nil, domain.ErrStaleExtraction
	}
	filled, err := s.mergeLocked(ctx, p)
	if err != nil {
		return nil, err
	}
	s.supersede()
	return filled, nil
}

// Reprice recomputes the customs value from the current draft and writes it
// back, all under one lock. derive returns false to keep the declared value
// and must not modify the draft it is given. A changed value loses its
// auto-filled mark.
func (s *Store) Reprice(ctx context.Context, derive func(domain.ShipmentDraft) (float64, bool)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	customsValue, ok := derive(s.state.Draft)
	if !ok || s.state.Draft.CustomsValue == customsValue {
		return nil
	}
	next := s.state.Clone()
	next.Draft.CustomsValue = customsValue
	delete(next.Provenance, "customsValue")
	return s.commit(ctx, next)
}

// Clear resets the draft to the canonical empty shape, removes the persisted
// record and supersedes any in-flight extraction.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Delete(ctx, s.namespace); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("deleting draft: %w", err)
	}
	s.state = domain.NewDraftState()
	s.supersede()
	log.Printf("draft.Store.Clear: reset %s", s.namespace)
	return nil
}

// supersede invalidates the active ticket. Callers hold s.mu.
func (s *Store) supersede() {
	s.active = 0
	s.inFlight = false
}

// commit persists next and then makes it the current state. Callers hold s.mu.
func (s *Store) commit(ctx context.Context, next domain.DraftState) error {
	rec := &domain.DraftRecord{
		SchemaVersion: SchemaVersion,
		Mode:          next.Mode,
		Draft:         next.Draft,
		Provenance:    next.Provenance,
		UpdatedAt:     s.now().UTC(),
	}
	if err := s.repo.Save(ctx, s.namespace, rec); err != nil {
		log.Printf("draft.Store.commit: failed to persist %s: %v", s.namespace, err)
		return fmt.Errorf("saving draft: %w", err)
	}
	s.state = next
	return nil
}

// keepUnchanged returns the entries of prov whose value is identical in
// before and after.
func keepUnchanged(prov domain.ProvenanceMap, before, after domain.ShipmentDraft) domain.ProvenanceMap {
	out := make(domain.ProvenanceMap, len(prov))
	for path, filled := range prov {
		old, okOld := before.ValueAt(path)
		cur, okNew := after.ValueAt(path)
		if okOld && okNew && reflect.DeepEqual(old, cur) {
			out[path] = filled
		}
	}
	return out
}
