package prompt

import (
	"context"
	"fmt"

	"gemini-chat-backend/internal/models"
)

// OverrideStore supplies the user-configured template override. An empty
// string means no override is configured and the default template applies.
type OverrideStore interface {
	GetOverride(ctx context.Context) (string, error)
}

// Assembler produces the final system prompt submitted to the completion API.
type Assembler struct {
	overrides OverrideStore
}

func NewAssembler(overrides OverrideStore) *Assembler {
	return &Assembler{overrides: overrides}
}

// Assemble serializes the history (which must already include the newest
// outgoing user message), selects the custom template if one is configured,
// and renders it. A history that fails to encode or an override store that
// fails to read yields an error; callers must treat that as non-sendable
// rather than submitting a broken prompt.
func (a *Assembler) Assemble(ctx context.Context, history []models.Message, formal bool, modelName string) (string, error) {
	historyJSON, err := SerializeHistory(history)
	if err != nil {
		return "", fmt.Errorf("failed to serialize history: %w", err)
	}

	template := DefaultTemplate
	if a.overrides != nil {
		custom, err := a.overrides.GetOverride(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to load template override: %w", err)
		}
		if custom != "" {
			template = custom
		}
	}

	return Render(template, Values{
		HistoryJSON: historyJSON,
		Formal:      formal,
		ModelName:   modelName,
	}), nil
}
