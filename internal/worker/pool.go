package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"gemini-chat-backend/internal/models"
	"gemini-chat-backend/internal/prompt"
	"gemini-chat-backend/internal/repository"
	"gemini-chat-backend/internal/services"
)

// fallbackTitle names a session whose smart rename failed permanently.
const fallbackTitle = "Untitled Chat"

// Pool consumes smart-rename jobs from the Redis queue. Renaming is the only
// background work: it calls the model, so it runs off the request path and
// retries on transient failure.
type Pool struct {
	redis       *redis.Client
	gemini      *services.GeminiService
	queue       *services.RenameQueue
	sessionRepo *repository.SessionRepo
	credentials *repository.CredentialRepo
	events      *services.EventPublisher
	renameModel string
	workerCount int
	stopChan    chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	gemini *services.GeminiService,
	queue *services.RenameQueue,
	sessionRepo *repository.SessionRepo,
	credentials *repository.CredentialRepo,
	events *services.EventPublisher,
	renameModel string,
	workerCount int,
) *Pool {
	return &Pool{
		redis:       redisClient,
		gemini:      gemini,
		queue:       queue,
		sessionRepo: sessionRepo,
		credentials: credentials,
		events:      events,
		renameModel: renameModel,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	log.Printf("Started %d rename worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, services.RenameQueueKey).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.RenameJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Worker %d: renaming session %s", id, job.SessionID)

		if err := p.processRename(ctx, &job); err != nil {
			p.handleFailure(ctx, &job, err)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processRename(ctx context.Context, job *models.RenameJob) error {
	session, err := p.sessionRepo.GetByID(ctx, job.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	apiKey, err := p.credentials.APIKey(ctx)
	if err != nil {
		return fmt.Errorf("no credential for rename: %w", err)
	}

	chatJSON, err := prompt.SerializeHistory(session.Messages)
	if err != nil {
		return fmt.Errorf("failed to serialize session transcript: %w", err)
	}

	title, err := p.gemini.SmartRenameTitle(ctx, apiKey, p.renameModel, chatJSON)
	if err != nil {
		return fmt.Errorf("rename generation failed: %w", err)
	}

	if err := p.sessionRepo.UpdateTitle(ctx, job.SessionID, title); err != nil {
		return fmt.Errorf("failed to save title: %w", err)
	}

	p.events.PublishUpdate(ctx, models.WSMessage{
		Type:    models.EventSessionRenamed,
		Payload: models.SessionEvent{SessionID: job.SessionID, Title: title},
	})

	log.Printf("Renamed session %s to %q", job.SessionID, title)
	return nil
}

func (p *Pool) handleFailure(ctx context.Context, job *models.RenameJob, err error) {
	job.RetryCount++
	errMsg := err.Error()

	if job.RetryCount < 3 {
		// Re-queue with backoff
		log.Printf("Rename of session %s failed (attempt %d): %s - retrying", job.SessionID, job.RetryCount, errMsg)
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		p.queue.Requeue(*job, backoff)
		return
	}

	// Max retries reached; give the session a usable title anyway.
	log.Printf("Rename of session %s failed permanently: %s", job.SessionID, errMsg)
	if updateErr := p.sessionRepo.UpdateTitle(ctx, job.SessionID, fallbackTitle); updateErr != nil {
		log.Printf("Failed to apply fallback title to session %s: %v", job.SessionID, updateErr)
		return
	}

	p.events.PublishUpdate(ctx, models.WSMessage{
		Type:    models.EventSessionRenamed,
		Payload: models.SessionEvent{SessionID: job.SessionID, Title: fallbackTitle},
	})
}
