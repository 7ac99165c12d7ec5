package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TemplateRepo owns the single custom system-prompt override. An absent row
// means the built-in default template is in effect.
type TemplateRepo struct {
	pool *pgxpool.Pool
}

func NewTemplateRepo(pool *pgxpool.Pool) *TemplateRepo {
	return &TemplateRepo{pool: pool}
}

// GetOverride returns the configured override, or "" when none is set.
func (r *TemplateRepo) GetOverride(ctx context.Context) (string, error) {
	var body string
	err := r.pool.QueryRow(ctx, `SELECT body FROM template_override WHERE id = 1`).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return body, nil
}

func (r *TemplateRepo) SetOverride(ctx context.Context, body string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO template_override (id, body, updated_at) VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
	`, body)
	return err
}

func (r *TemplateRepo) ClearOverride(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM template_override WHERE id = 1`)
	return err
}
