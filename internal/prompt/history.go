package prompt

import (
	"encoding/json"

	"gemini-chat-backend/internal/models"
)

// HistoryEntry is the read-only projection of a transcript message used for
// serialization. Recomputed on every assembly, never persisted.
type HistoryEntry struct {
	Role    string `json:"role"` // "user" | "ai"
	Message string `json:"message"`
}

// SerializeHistory encodes the transcript as a pretty-printed JSON array of
// {role, message} objects in chat order. The empty transcript encodes as "[]".
// Output formatting is stable, so rendered prompts are byte-reproducible.
func SerializeHistory(messages []models.Message) (string, error) {
	entries := make([]HistoryEntry, 0, len(messages))
	for _, m := range messages {
		role := "ai"
		if m.IsUser {
			role = "user"
		}
		entries = append(entries, HistoryEntry{Role: role, Message: m.Text})
	}

	encoded, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
