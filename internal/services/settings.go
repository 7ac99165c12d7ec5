package services

import (
	"context"
	"errors"
	"strings"

	"gemini-chat-backend/internal/models"
	"gemini-chat-backend/internal/prompt"
	"gemini-chat-backend/internal/repository"
)

type templateStore interface {
	GetOverride(ctx context.Context) (string, error)
	SetOverride(ctx context.Context, body string) error
	ClearOverride(ctx context.Context) error
}

type credentialStore interface {
	Set(ctx context.Context, name, secret string) error
	Exists(ctx context.Context, name string) (bool, error)
}

// SettingsService manages the prompt template override and the stored API
// credential.
type SettingsService struct {
	templates   templateStore
	credentials credentialStore
	catalog     modelCatalog
	prober      modelProber
}

func NewSettingsService(templates templateStore, credentials credentialStore, catalog modelCatalog, prober modelProber) *SettingsService {
	return &SettingsService{
		templates:   templates,
		credentials: credentials,
		catalog:     catalog,
		prober:      prober,
	}
}

// Template returns the active template: the stored override when one exists,
// otherwise the built-in default.
func (s *SettingsService) Template(ctx context.Context) (models.TemplateResponse, error) {
	override, err := s.templates.GetOverride(ctx)
	if err != nil {
		return models.TemplateResponse{}, err
	}
	if override != "" {
		return models.TemplateResponse{Template: override, Custom: true}, nil
	}
	return models.TemplateResponse{Template: prompt.DefaultTemplate, Custom: false}, nil
}

// SetTemplate stores a custom template after checking it carries the
// required placeholders.
func (s *SettingsService) SetTemplate(ctx context.Context, body string) error {
	if strings.TrimSpace(body) == "" {
		return &ValidationError{Fields: map[string]string{"template": "is required"}}
	}

	var tmplErr *prompt.TemplateError
	if err := prompt.ValidateTemplate(body); err != nil {
		if errors.As(err, &tmplErr) {
			return &ValidationError{Fields: tmplErr.Fields}
		}
		return err
	}
	return s.templates.SetOverride(ctx, body)
}

// ClearTemplate removes the override so the default template applies again.
func (s *SettingsService) ClearTemplate(ctx context.Context) error {
	return s.templates.ClearOverride(ctx)
}

func (s *SettingsService) CredentialStatus(ctx context.Context) (models.CredentialStatus, error) {
	configured, err := s.credentials.Exists(ctx, repository.KeyAPI)
	if err != nil {
		return models.CredentialStatus{}, err
	}
	return models.CredentialStatus{Configured: configured}, nil
}

// SetCredential runs a validation batch with the candidate key and stores it
// only when at least one catalog model is reachable, so a mistyped key is
// rejected instead of silently breaking every later call. An empty catalog
// skips the probe.
func (s *SettingsService) SetCredential(ctx context.Context, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &ValidationError{Fields: map[string]string{"api_key": "is required"}}
	}

	catalog, err := s.catalog.List(ctx)
	if err != nil {
		return err
	}
	if len(catalog) > 0 {
		reachable := false
		for _, result := range s.prober.ValidateAll(ctx, apiKey, catalog, nil) {
			if result.Outcome == models.ValidationSuccess {
				reachable = true
				break
			}
		}
		if !reachable {
			return &UnauthorizedError{Message: "API key failed validation"}
		}
	}

	return s.credentials.Set(ctx, repository.KeyAPI, apiKey)
}
