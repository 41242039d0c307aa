package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"shipdesk/internal/domain"
	"shipdesk/internal/port"
)

type draftRow struct {
	Namespace     string    `db:"namespace"`
	SchemaVersion int       `db:"schema_version"`
	Mode          string    `db:"mode"`
	Record        []byte    `db:"record"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type draftRepo struct {
	db *sqlx.DB
}

// NewDraftRepo creates a new PostgreSQL-backed DraftRepository. Each
// namespace holds one JSONB document.
func NewDraftRepo(db *sqlx.DB) port.DraftRepository {
	return &draftRepo{db: db}
}

func (r *draftRepo) Load(ctx context.Context, namespace string) (*domain.DraftRecord, error) {
	var row draftRow
	err := r.db.GetContext(ctx, &row,
		"SELECT namespace, schema_version, mode, record, updated_at FROM shipment_drafts WHERE namespace = $1",
		namespace)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("draftRepo.Load: %w", err)
	}

	var rec domain.DraftRecord
	if err := json.Unmarshal(row.Record, &rec); err != nil {
		return nil, fmt.Errorf("draftRepo.Load decode: %w", err)
	}
	// The column is authoritative; version 0 documents carry no version key.
	rec.SchemaVersion = row.SchemaVersion
	rec.UpdatedAt = row.UpdatedAt
	return &rec, nil
}

func (r *draftRepo) Save(ctx context.Context, namespace string, rec *domain.DraftRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("draftRepo.Save encode: %w", err)
	}

	query := `INSERT INTO shipment_drafts (namespace, schema_version, mode, record, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (namespace) DO UPDATE SET
			schema_version = EXCLUDED.schema_version,
			mode = EXCLUDED.mode,
			record = EXCLUDED.record,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		namespace, rec.SchemaVersion, string(rec.Mode), doc, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("draftRepo.Save: %w", err)
	}
	return nil
}

func (r *draftRepo) Delete(ctx context.Context, namespace string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM shipment_drafts WHERE namespace = $1", namespace)
	if err != nil {
		return fmt.Errorf("draftRepo.Delete: %w", err)
	}
	return nil
}
