package models

import "github.com/google/uuid"

// WebSocket event types. The hub relays these to every connected client after
// each store mutation so UIs refresh without polling.
const (
	EventTranscriptUpdated = "transcript_updated"
	EventSessionSaved      = "session_saved"
	EventSessionDeleted    = "session_deleted"
	EventSessionRenamed    = "session_renamed"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type TranscriptUpdate struct {
	MessageCount int      `json:"message_count"`
	Latest       *Message `json:"latest,omitempty"`
}

type SessionEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	Title     string    `json:"title,omitempty"`
}

// RenameJob is the payload queued for the smart-rename workers. ID
// deduplicates deliveries; RetryCount tracks re-queues after failure.
type RenameJob struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	RetryCount int       `json:"retry_count"`
}

type LoginRequest struct {
	Password string `json:"password"`
}

type AuthTokens struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type TemplateResponse struct {
	Template string `json:"template"`
	Custom   bool   `json:"custom"`
}

type SetTemplateRequest struct {
	Template string `json:"template"`
}

type SetCredentialRequest struct {
	APIKey string `json:"api_key"`
}

type CredentialStatus struct {
	Configured bool `json:"configured"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
