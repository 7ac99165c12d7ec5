package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gemini-chat-backend/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepo owns named transcript snapshots. Snapshots are copies; editing
// the live transcript after a save never touches them.
type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, title string, messages []models.Message) (*models.ChatSession, error) {
	s := &models.ChatSession{
		ID:       uuid.New(),
		Title:    title,
		Messages: messages,
	}

	encoded, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session messages: %w", err)
	}

	query := `INSERT INTO chat_sessions (id, title, messages) VALUES ($1, $2, $3) RETURNING created_at`
	if err := r.pool.QueryRow(ctx, query, s.ID, s.Title, encoded).Scan(&s.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	s := &models.ChatSession{}
	var encoded []byte

	query := `SELECT id, title, messages, created_at FROM chat_sessions WHERE id = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Title, &encoded, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(encoded, &s.Messages); err != nil {
		return nil, fmt.Errorf("failed to decode session messages: %w", err)
	}
	return s, nil
}

func (r *SessionRepo) List(ctx context.Context) ([]*models.ChatSession, error) {
	query := `SELECT id, title, messages, created_at FROM chat_sessions ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []*models.ChatSession{}
	for rows.Next() {
		s := &models.ChatSession{}
		var encoded []byte
		if err := rows.Scan(&s.ID, &s.Title, &encoded, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(encoded, &s.Messages); err != nil {
			return nil, fmt.Errorf("failed to decode session messages: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListUntitled returns sessions still waiting for a smart-rename title.
func (r *SessionRepo) ListUntitled(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM chat_sessions WHERE title = '' ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SessionRepo) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE chat_sessions SET title = $2 WHERE id = $1`, id, title)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}
