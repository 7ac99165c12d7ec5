package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"gemini-chat-backend/internal/models"
)

// TranscriptRepo owns the live transcript: an ordered message list mutated
// only by the single send flow (and wholesale replace on restore).
type TranscriptRepo struct {
	pool *pgxpool.Pool
}

func NewTranscriptRepo(pool *pgxpool.Pool) *TranscriptRepo {
	return &TranscriptRepo{pool: pool}
}

func (r *TranscriptRepo) Append(ctx context.Context, m *models.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}

	query := `INSERT INTO messages (id, is_user, text) VALUES ($1, $2, $3) RETURNING created_at`
	if err := r.pool.QueryRow(ctx, query, m.ID, m.IsUser, m.Text).Scan(&m.CreatedAt); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func (r *TranscriptRepo) List(ctx context.Context) ([]models.Message, error) {
	query := `SELECT id, is_user, text, created_at FROM messages ORDER BY seq ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.IsUser, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Replace swaps the whole transcript for the given messages, in order. Used
// when restoring a saved session.
func (r *TranscriptRepo) Replace(ctx context.Context, messages []models.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("failed to clear transcript: %w", err)
	}

	for _, m := range messages {
		id := m.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		var createdAt interface{}
		if !m.CreatedAt.IsZero() {
			createdAt = m.CreatedAt
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO messages (id, is_user, text, created_at) VALUES ($1, $2, $3, COALESCE($4, NOW()))`,
			id, m.IsUser, m.Text, createdAt,
		)
		if err != nil {
			return fmt.Errorf("failed to restore message: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *TranscriptRepo) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM messages`)
	return err
}

func (r *TranscriptRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}
