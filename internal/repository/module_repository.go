package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-portal-api/internal/models"
)

// ModuleRepository handles persistence for modules in PostgreSQL.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository creates a new repository instance.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// List returns modules matching filters, newest academic year first.
func (r *ModuleRepository) List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error) {
	query := "SELECT id, name, year, term, created_at FROM modules WHERE 1=1"
	var args []interface{}

	if filter.Year != "" {
		args = append(args, filter.Year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}
	if filter.Term != "" {
		args = append(args, filter.Term)
		query += fmt.Sprintf(" AND term = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		query += fmt.Sprintf(" AND (LOWER(id) LIKE $%d OR LOWER(name) LIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY year DESC, id ASC"

	modules := make([]models.Module, 0)
	if err := r.db.SelectContext(ctx, &modules, query, args...); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// Create persists a new module. An existing id yields ErrDuplicate.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if module.CreatedAt.IsZero() {
		module.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO modules (id, name, year, term, created_at) VALUES (:id, :name, :year, :term, :created_at) ON CONFLICT (id) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, module)
	if err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	if affected == 0 {
		return ErrDuplicate
	}
	return nil
}

// Delete removes a module row. A missing row yields ErrNotFound.
func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Terms returns the distinct year/term pairs in use.
func (r *ModuleRepository) Terms(ctx context.Context) ([]models.TermOption, error) {
	const query = `SELECT DISTINCT year, term FROM modules ORDER BY year DESC, term ASC`
	terms := make([]models.TermOption, 0)
	if err := r.db.SelectContext(ctx, &terms, query); err != nil {
		return nil, fmt.Errorf("list module terms: %w", err)
	}
	return terms, nil
}

// Ping verifies the database answers.
func (r *ModuleRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
