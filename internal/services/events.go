package services

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"gemini-chat-backend/internal/models"
)

// UpdatesChannel is the Redis pub/sub channel the WebSocket hub fans out to
// connected clients.
const UpdatesChannel = "chat_updates"

// EventPublisher broadcasts store-change events. Consumers (UIs) subscribe
// through the WebSocket hub instead of polling.
type EventPublisher struct {
	redis *redis.Client
}

func NewEventPublisher(redisClient *redis.Client) *EventPublisher {
	return &EventPublisher{redis: redisClient}
}

func (p *EventPublisher) PublishUpdate(ctx context.Context, msg models.WSMessage) {
	data, _ := json.Marshal(msg)
	p.redis.Publish(ctx, UpdatesChannel, string(data))
}
