package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"gemini-chat-backend/internal/models"
)

// canaryPrompt probes whether a credential/model pairing is reachable.
const canaryPrompt = `This is a system Test, respond with exactly "Success" without the "'s to indicate that no issues occured.`

const renamePrompt = "You are part of an AI chat application, your purpose is to generate names for the chats between the user and the AI model, make sure they're short and fitting based on the chat's contents, make sure to ONLY RESPOND WITH THE NAME, no extra comment, no acknowledgement of this prompt, nothing - just the new name, here is the chat as JSON: "

const codeblockPrompt = "You are part of an App, without any further comments take the following code, detect its language and put it in a markdown code block:\n\n"

// GeminiService talks to the generative-language API. Clients are built per
// call because the credential is user-supplied and can change at any time
// (probes may even run against a candidate key that is never persisted).
type GeminiService struct{}

func NewGeminiService() *GeminiService {
	return &GeminiService{}
}

func (s *GeminiService) newModel(ctx context.Context, credential, modelID string) (*genai.Client, *genai.GenerativeModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(credential))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, client.GenerativeModel(modelID), nil
}

// StreamGenerate opens a streaming completion call and accumulates fragments
// in arrival order, invoking onFragment for each one. The returned string is
// the full accumulated text; on transport failure or cancellation it holds
// whatever arrived before the stream died, alongside the error. A nil error
// with empty text means the model genuinely produced no output.
func (s *GeminiService) StreamGenerate(ctx context.Context, credential, modelID, prompt string, onFragment func(string)) (string, error) {
	client, model, err := s.newModel(ctx, credential, modelID)
	if err != nil {
		return "", err
	}
	defer client.Close()

	iter := model.GenerateContentStream(ctx, genai.Text(prompt))
	return accumulate(&genaiFragments{iter: iter}, onFragment)
}

// Generate issues a non-streaming completion call.
func (s *GeminiService) Generate(ctx context.Context, credential, modelID, prompt string) (string, error) {
	client, model, err := s.newModel(ctx, credential, modelID)
	if err != nil {
		return "", err
	}
	defer client.Close()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return extractText(resp), nil
}

// ValidateModel probes one model with the canary prompt. Classification is
// the loose policy: reachable iff the stream terminates cleanly with any
// non-blank output. Transport failures and blank output both classify as
// error; the probe does not distinguish "model unsupported" from "network
// down".
func (s *GeminiService) ValidateModel(ctx context.Context, credential string, m models.ModelDescriptor) models.ValidationResult {
	text, err := s.StreamGenerate(ctx, credential, m.ID, canaryPrompt, nil)
	if err != nil || strings.TrimSpace(text) == "" {
		return models.ValidationResult{Model: m, Outcome: models.ValidationError}
	}
	return models.ValidationResult{Model: m, Outcome: models.ValidationSuccess}
}

// ValidateAll probes every catalog entry sequentially, one in flight at a
// time, reporting each result as it lands. One failing model never aborts
// the batch.
func (s *GeminiService) ValidateAll(ctx context.Context, credential string, catalog []models.ModelDescriptor, onResult func(models.ValidationResult)) []models.ValidationResult {
	return RunValidation(ctx, catalog, func(ctx context.Context, m models.ModelDescriptor) models.ValidationResult {
		return s.ValidateModel(ctx, credential, m)
	}, onResult)
}

// RunValidation drives a sequential validation batch in catalog order.
// Results arrive through onResult as they complete and are also collected
// into the returned slice. Only context cancellation stops the run early.
func RunValidation(ctx context.Context, catalog []models.ModelDescriptor, probe func(context.Context, models.ModelDescriptor) models.ValidationResult, onResult func(models.ValidationResult)) []models.ValidationResult {
	results := make([]models.ValidationResult, 0, len(catalog))
	for _, m := range catalog {
		if ctx.Err() != nil {
			break
		}
		res := probe(ctx, m)
		results = append(results, res)
		if onResult != nil {
			onResult(res)
		}
	}
	return results
}

// SmartRenameTitle asks the model for a short title describing the given
// session transcript.
func (s *GeminiService) SmartRenameTitle(ctx context.Context, credential, modelID string, chatJSON string) (string, error) {
	title, err := s.Generate(ctx, credential, modelID, renamePrompt+chatJSON)
	if err != nil {
		return "", err
	}
	title = strings.Trim(strings.TrimSpace(title), `"`)
	if title == "" {
		return "", errors.New("model returned an empty title")
	}
	return title, nil
}

// FormatCodeblock asks the model to wrap raw code in a fenced Markdown block.
// On any failure the raw code comes back unchanged, so insertion never loses
// the user's input.
func (s *GeminiService) FormatCodeblock(ctx context.Context, credential, modelID, code string) string {
	out, err := s.Generate(ctx, credential, modelID, codeblockPrompt+code)
	if err != nil || strings.TrimSpace(out) == "" {
		return code
	}
	return out
}

// fragmentSource abstracts the streaming iterator so accumulation logic is
// testable without the transport. next returns iterator.Done when the stream
// is exhausted.
type fragmentSource interface {
	next() (string, error)
}

type genaiFragments struct {
	iter *genai.GenerateContentResponseIterator
}

func (g *genaiFragments) next() (string, error) {
	resp, err := g.iter.Next()
	if err != nil {
		return "", err
	}
	return extractText(resp), nil
}

// accumulate appends fragments to the buffer strictly in arrival order. The
// partial buffer survives a mid-stream failure and is returned with the
// error, never discarded.
func accumulate(frags fragmentSource, onFragment func(string)) (string, error) {
	var buf strings.Builder
	for {
		text, err := frags.next()
		if errors.Is(err, iterator.Done) {
			return buf.String(), nil
		}
		if err != nil {
			return buf.String(), err
		}
		if text == "" {
			continue
		}
		buf.WriteString(text)
		if onFragment != nil {
			onFragment(text)
		}
	}
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
