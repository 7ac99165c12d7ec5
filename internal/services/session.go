package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"gemini-chat-backend/internal/models"
	"gemini-chat-backend/internal/repository"
)

// RenameQueueKey is the Redis list the smart-rename workers consume.
const RenameQueueKey = "queue:smart-rename"

type sessionStore interface {
	Create(ctx context.Context, title string, messages []models.Message) (*models.ChatSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error)
	List(ctx context.Context) ([]*models.ChatSession, error)
	UpdateTitle(ctx context.Context, id uuid.UUID, title string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type transcriptSnapshots interface {
	List(ctx context.Context) ([]models.Message, error)
	Replace(ctx context.Context, messages []models.Message) error
}

type renameEnqueuer interface {
	Enqueue(ctx context.Context, sessionID uuid.UUID) error
}

// SessionService manages named transcript snapshots. Saving copies the live
// transcript; restoring copies it back. Neither direction leaves the two
// linked afterwards.
type SessionService struct {
	sessions    sessionStore
	transcripts transcriptSnapshots
	queue       renameEnqueuer
	events      eventPublisher
}

func NewSessionService(sessions sessionStore, transcripts transcriptSnapshots, queue renameEnqueuer, events eventPublisher) *SessionService {
	return &SessionService{
		sessions:    sessions,
		transcripts: transcripts,
		queue:       queue,
		events:      events,
	}
}

// Save snapshots the current transcript under the given title. A blank title
// saves the session as untitled and queues a smart-rename job; the title
// arrives asynchronously through a session_renamed event.
func (s *SessionService) Save(ctx context.Context, req models.SaveSessionRequest) (*models.ChatSession, error) {
	messages, err := s.transcripts.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"transcript": "is empty, nothing to save"}}
	}

	title := strings.TrimSpace(req.Title)
	session, err := s.sessions.Create(ctx, title, messages)
	if err != nil {
		return nil, err
	}

	if title == "" {
		if err := s.queue.Enqueue(ctx, session.ID); err != nil {
			// Saved but unnamed; the explicit smart-rename endpoint can retry.
			return session, nil
		}
	}

	s.events.PublishUpdate(ctx, models.WSMessage{
		Type:    models.EventSessionSaved,
		Payload: models.SessionEvent{SessionID: session.ID, Title: session.Title},
	})
	return session, nil
}

func (s *SessionService) List(ctx context.Context) ([]*models.ChatSession, error) {
	return s.sessions.List(ctx)
}

func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, &NotFoundError{Message: "Session not found"}
		}
		return nil, err
	}
	return session, nil
}

// Restore replaces the live transcript with the session's snapshot. The
// current transcript is discarded; callers wanting to keep it save first.
func (s *SessionService) Restore(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.transcripts.Replace(ctx, session.Messages); err != nil {
		return nil, err
	}

	s.events.PublishUpdate(ctx, models.WSMessage{
		Type:    models.EventTranscriptUpdated,
		Payload: models.TranscriptUpdate{MessageCount: len(session.Messages)},
	})
	return session, nil
}

func (s *SessionService) Rename(ctx context.Context, id uuid.UUID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return &ValidationError{Fields: map[string]string{"title": "is required"}}
	}

	if err := s.sessions.UpdateTitle(ctx, id, title); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return &NotFoundError{Message: "Session not found"}
		}
		return err
	}

	s.events.PublishUpdate(ctx, models.WSMessage{
		Type:    models.EventSessionRenamed,
		Payload: models.SessionEvent{SessionID: id, Title: title},
	})
	return nil
}

func (s *SessionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return &NotFoundError{Message: "Session not found"}
		}
		return err
	}

	s.events.PublishUpdate(ctx, models.WSMessage{
		Type:    models.EventSessionDeleted,
		Payload: models.SessionEvent{SessionID: id},
	})
	return nil
}

// RequestSmartRename queues a rename job for an existing session. The job is
// picked up by the worker pool; the result arrives as a session_renamed
// event.
func (s *SessionService) RequestSmartRename(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.queue.Enqueue(ctx, id)
}

// RenameQueue pushes smart-rename jobs onto the Redis list the worker pool
// consumes.
type RenameQueue struct {
	redis *redis.Client
}

func NewRenameQueue(redisClient *redis.Client) *RenameQueue {
	return &RenameQueue{redis: redisClient}
}

func (q *RenameQueue) Enqueue(ctx context.Context, sessionID uuid.UUID) error {
	job := models.RenameJob{ID: uuid.New(), SessionID: sessionID}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.redis.LPush(ctx, RenameQueueKey, string(data)).Err()
}

// Requeue pushes a failed job back after a backoff, preserving its retry
// count.
func (q *RenameQueue) Requeue(job models.RenameJob, backoff time.Duration) {
	data, _ := json.Marshal(job)
	time.AfterFunc(backoff, func() {
		q.redis.LPush(context.Background(), RenameQueueKey, string(data))
	})
}
