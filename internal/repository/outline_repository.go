package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-portal-api/internal/models"
)

// OutlineRepository stores one extraction result per module in PostgreSQL.
type OutlineRepository struct {
	db *sqlx.DB
}

// NewOutlineRepository creates a new repository instance.
func NewOutlineRepository(db *sqlx.DB) *OutlineRepository {
	return &OutlineRepository{db: db}
}

type outlineRow struct {
	ModuleID  string    `db:"module_id"`
	Content   []byte    `db:"content"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Get returns the stored outline or ErrNotFound.
func (r *OutlineRepository) Get(ctx context.Context, moduleID string) (*models.OutlineRecord, error) {
	const query = `SELECT module_id, content, updated_at FROM outlines WHERE module_id = $1`
	var row outlineRow
	if err := r.db.GetContext(ctx, &row, query, moduleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get outline: %w", err)
	}

	record := &models.OutlineRecord{ModuleID: row.ModuleID, UpdatedAt: row.UpdatedAt}
	if err := json.Unmarshal(row.Content, &record.Result); err != nil {
		return nil, fmt.Errorf("decode outline: %w", err)
	}
	return record, nil
}

// Upsert writes the outline, replacing any previous result wholesale.
func (r *OutlineRepository) Upsert(ctx context.Context, record *models.OutlineRecord) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	content, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("encode outline: %w", err)
	}

	const query = `INSERT INTO outlines (module_id, content, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (module_id) DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, record.ModuleID, string(content), record.UpdatedAt); err != nil {
		return fmt.Errorf("upsert outline: %w", err)
	}
	return nil
}

// Delete drops a module's outline; a missing row is not an error.
func (r *OutlineRepository) Delete(ctx context.Context, moduleID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM outlines WHERE module_id = $1`, moduleID); err != nil {
		return fmt.Errorf("delete outline: %w", err)
	}
	return nil
}
