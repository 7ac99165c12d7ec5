package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is one entry in the live transcript. Messages are immutable once
// stored; the in-progress assistant reply lives only in memory until the
// stream finalizes, then is appended as a regular message.
type Message struct {
	ID        uuid.UUID `json:"id"`
	IsUser    bool      `json:"is_user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatSession is a named snapshot of a transcript. The message list is a copy
// taken at save time, independent of the live transcript afterwards.
type ChatSession struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	Message string `json:"message"`
	Formal  bool   `json:"formal"`
	ModelID string `json:"model_id"`
}

// SendMessageResponse is the non-streaming reply shape. On transport failure
// Reply still carries whatever text accumulated before the stream died, with
// Error set alongside it.
type SendMessageResponse struct {
	Reply *Message `json:"reply"`
	Error string   `json:"error,omitempty"`
}

type CodeblockRequest struct {
	Code    string `json:"code"`
	ModelID string `json:"model_id"`
}

type CodeblockResponse struct {
	Markdown string `json:"markdown"`
}

type SaveSessionRequest struct {
	Title string `json:"title"`
}
