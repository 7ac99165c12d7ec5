package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"gemini-chat-backend/internal/models"
	"gemini-chat-backend/internal/repository"
)

type transcriptStore interface {
	Append(ctx context.Context, m *models.Message) error
	List(ctx context.Context) ([]models.Message, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

type promptAssembler interface {
	Assemble(ctx context.Context, history []models.Message, formal bool, modelName string) (string, error)
}

type generator interface {
	StreamGenerate(ctx context.Context, credential, modelID, prompt string, onFragment func(string)) (string, error)
	FormatCodeblock(ctx context.Context, credential, modelID, code string) string
}

type credentialSource interface {
	APIKey(ctx context.Context) (string, error)
}

type modelCatalog interface {
	List(ctx context.Context) ([]models.ModelDescriptor, error)
}

type eventPublisher interface {
	PublishUpdate(ctx context.Context, msg models.WSMessage)
}

// ChatService runs the send pipeline: commit the user message, serialize
// history, assemble the prompt, stream the completion, and finalize the
// assistant message. One generation may be in flight at a time; overlapping
// sends are rejected rather than queued or interleaved.
type ChatService struct {
	transcripts transcriptStore
	assembler   promptAssembler
	gemini      generator
	credentials credentialSource
	catalog     modelCatalog
	events      eventPublisher

	mu         sync.Mutex
	generating bool
}

func NewChatService(
	transcripts transcriptStore,
	assembler promptAssembler,
	gemini generator,
	credentials credentialSource,
	catalog modelCatalog,
	events eventPublisher,
) *ChatService {
	return &ChatService{
		transcripts: transcripts,
		assembler:   assembler,
		gemini:      gemini,
		credentials: credentials,
		catalog:     catalog,
		events:      events,
	}
}

func (s *ChatService) tryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return false
	}
	s.generating = true
	return true
}

func (s *ChatService) end() {
	s.mu.Lock()
	s.generating = false
	s.mu.Unlock()
}

// Send drives one full generation. The user message is committed before the
// stream opens; the assistant message is committed after it closes, with
// whatever text accumulated - including the partial text of a cancelled or
// failed stream. A transport failure is returned as *GenerationError next to
// the already-committed message, never instead of it.
func (s *ChatService) Send(ctx context.Context, req models.SendMessageRequest, onFragment func(string)) (*models.Message, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, &ValidationError{Fields: map[string]string{"message": "is required"}}
	}
	if req.ModelID == "" {
		return nil, &ValidationError{Fields: map[string]string{"model_id": "is required"}}
	}

	if !s.tryBegin() {
		return nil, &ConflictError{Message: "a generation is already in flight"}
	}
	defer s.end()

	credential, err := s.credentials.APIKey(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return nil, &UnauthorizedError{Message: "No API key configured"}
		}
		return nil, err
	}

	modelName, err := s.resolveModelName(ctx, req.ModelID)
	if err != nil {
		return nil, err
	}

	userMsg := &models.Message{IsUser: true, Text: req.Message}
	if err := s.transcripts.Append(ctx, userMsg); err != nil {
		return nil, err
	}
	s.publishTranscript(ctx, userMsg)

	history, err := s.transcripts.List(ctx)
	if err != nil {
		return nil, err
	}

	promptText, err := s.assembler.Assemble(ctx, history, req.Formal, modelName)
	if err != nil {
		// Non-sendable: nothing is submitted and no assistant message appears.
		return nil, err
	}

	text, streamErr := s.gemini.StreamGenerate(ctx, credential, req.ModelID, promptText, onFragment)

	cancelled := streamErr != nil && (errors.Is(streamErr, context.Canceled) || errors.Is(streamErr, context.DeadlineExceeded))
	failed := streamErr != nil && !cancelled

	final := text
	if final == "" && failed {
		// No structured channel reaches the transcript itself, so an errored
		// stream with no partial text surfaces the error string as the entry.
		final = streamErr.Error()
	}

	// Finalization must survive the cancellation that ended the stream.
	fctx := context.WithoutCancel(ctx)
	assistant := &models.Message{IsUser: false, Text: final}
	if err := s.transcripts.Append(fctx, assistant); err != nil {
		return nil, err
	}
	s.publishTranscript(fctx, assistant)

	if failed {
		return assistant, &GenerationError{Message: streamErr.Error()}
	}
	return assistant, nil
}

func (s *ChatService) resolveModelName(ctx context.Context, modelID string) (string, error) {
	catalog, err := s.catalog.List(ctx)
	if err != nil {
		return "", err
	}
	for _, m := range catalog {
		if m.ID == modelID {
			return m.Name, nil
		}
	}
	return "", &NotFoundError{Message: "Model is not in the catalog"}
}

func (s *ChatService) Transcript(ctx context.Context) ([]models.Message, error) {
	return s.transcripts.List(ctx)
}

func (s *ChatService) ClearTranscript(ctx context.Context) error {
	if err := s.transcripts.Clear(ctx); err != nil {
		return err
	}
	s.events.PublishUpdate(ctx, models.WSMessage{
		Type:    models.EventTranscriptUpdated,
		Payload: models.TranscriptUpdate{MessageCount: 0},
	})
	return nil
}

// Codeblock wraps raw code in a fenced Markdown block via the model, falling
// back to the raw code when the call fails.
func (s *ChatService) Codeblock(ctx context.Context, modelID, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", &ValidationError{Fields: map[string]string{"code": "is required"}}
	}

	credential, err := s.credentials.APIKey(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return "", &UnauthorizedError{Message: "No API key configured"}
		}
		return "", err
	}
	return s.gemini.FormatCodeblock(ctx, credential, modelID, code), nil
}

// ExportMarkdown renders the transcript as shareable Markdown.
func ExportMarkdown(messages []models.Message) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		speaker := "Gemini"
		if m.IsUser {
			speaker = "User"
		}
		lines = append(lines, "**"+speaker+":** "+m.Text)
	}
	return strings.Join(lines, "\n\n")
}

func (s *ChatService) publishTranscript(ctx context.Context, latest *models.Message) {
	count, err := s.transcripts.Count(ctx)
	if err != nil {
		count = 0
	}
	s.events.PublishUpdate(ctx, models.WSMessage{
		Type:    models.EventTranscriptUpdated,
		Payload: models.TranscriptUpdate{MessageCount: count, Latest: latest},
	})
}
