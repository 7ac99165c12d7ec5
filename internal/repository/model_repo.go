package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"gemini-chat-backend/internal/models"
)

var (
	ErrModelExists   = errors.New("model ID already in catalog")
	ErrModelNotFound = errors.New("model not found")
)

// ModelRepo owns the ordered, user-editable model catalog. Model IDs are
// unique; adding a duplicate is rejected rather than shadowing.
type ModelRepo struct {
	pool *pgxpool.Pool
}

func NewModelRepo(pool *pgxpool.Pool) *ModelRepo {
	return &ModelRepo{pool: pool}
}

func (r *ModelRepo) List(ctx context.Context) ([]models.ModelDescriptor, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, model_id FROM model_catalog ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	catalog := []models.ModelDescriptor{}
	for rows.Next() {
		var m models.ModelDescriptor
		if err := rows.Scan(&m.Name, &m.ID); err != nil {
			return nil, err
		}
		catalog = append(catalog, m)
	}
	return catalog, rows.Err()
}

func (r *ModelRepo) Add(ctx context.Context, m models.ModelDescriptor) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO model_catalog (name, model_id) VALUES ($1, $2) ON CONFLICT (model_id) DO NOTHING`,
		m.Name, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to add model: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrModelExists
	}
	return nil
}

func (r *ModelRepo) Remove(ctx context.Context, modelID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM model_catalog WHERE model_id = $1`, modelID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrModelNotFound
	}
	return nil
}

// Reset drops every entry and restores the built-in catalog.
func (r *ModelRepo) Reset(ctx context.Context) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM model_catalog`); err != nil {
		return err
	}
	for _, m := range models.DefaultModels() {
		if _, err := tx.Exec(ctx,
			`INSERT INTO model_catalog (name, model_id) VALUES ($1, $2)`, m.Name, m.ID,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
