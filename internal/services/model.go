package services

import (
	"context"
	"errors"
	"strings"

	"gemini-chat-backend/internal/models"
	"gemini-chat-backend/internal/repository"
)

type catalogStore interface {
	List(ctx context.Context) ([]models.ModelDescriptor, error)
	Add(ctx context.Context, m models.ModelDescriptor) error
	Remove(ctx context.Context, modelID string) error
	Reset(ctx context.Context) error
}

type modelProber interface {
	ValidateModel(ctx context.Context, credential string, m models.ModelDescriptor) models.ValidationResult
	ValidateAll(ctx context.Context, credential string, catalog []models.ModelDescriptor, onResult func(models.ValidationResult)) []models.ValidationResult
}

// ModelService manages the model catalog and drives validation probes. A
// probe can run against a candidate credential that is never persisted, so
// new keys can be checked before replacing the stored one.
type ModelService struct {
	catalog     catalogStore
	prober      modelProber
	credentials credentialSource
}

func NewModelService(catalog catalogStore, prober modelProber, credentials credentialSource) *ModelService {
	return &ModelService{catalog: catalog, prober: prober, credentials: credentials}
}

func (s *ModelService) List(ctx context.Context) ([]models.ModelDescriptor, error) {
	return s.catalog.List(ctx)
}

func (s *ModelService) Add(ctx context.Context, req models.AddModelRequest) error {
	fieldErrors := make(map[string]string)
	if strings.TrimSpace(req.Name) == "" {
		fieldErrors["name"] = "Name is required"
	}
	if strings.TrimSpace(req.ID) == "" {
		fieldErrors["id"] = "Model ID is required"
	}
	if len(fieldErrors) > 0 {
		return &ValidationError{Fields: fieldErrors}
	}

	m := models.ModelDescriptor{
		Name: strings.TrimSpace(req.Name),
		ID:   strings.TrimSpace(req.ID),
	}

	// A model enters the catalog only after a successful probe, so the
	// catalog never accumulates entries the credential cannot reach.
	credential, err := s.resolveCredential(ctx, "")
	if err != nil {
		return err
	}
	if result := s.prober.ValidateModel(ctx, credential, m); result.Outcome != models.ValidationSuccess {
		return &ValidationError{Fields: map[string]string{"id": "Model failed the validation probe"}}
	}

	err = s.catalog.Add(ctx, m)
	if errors.Is(err, repository.ErrModelExists) {
		return &ConflictError{Message: "Model ID already in the catalog"}
	}
	return err
}

func (s *ModelService) Remove(ctx context.Context, modelID string) error {
	err := s.catalog.Remove(ctx, modelID)
	if errors.Is(err, repository.ErrModelNotFound) {
		return &NotFoundError{Message: "Model is not in the catalog"}
	}
	return err
}

// Reset discards the catalog and restores the built-in defaults.
func (s *ModelService) Reset(ctx context.Context) ([]models.ModelDescriptor, error) {
	if err := s.catalog.Reset(ctx); err != nil {
		return nil, err
	}
	return s.catalog.List(ctx)
}

// Validate probes a single model. The descriptor does not have to be in the
// catalog, so a model can be checked before it is added.
func (s *ModelService) Validate(ctx context.Context, req models.ValidateModelRequest) (models.ValidationResult, error) {
	if strings.TrimSpace(req.ID) == "" {
		return models.ValidationResult{}, &ValidationError{Fields: map[string]string{"id": "Model ID is required"}}
	}

	credential, err := s.resolveCredential(ctx, req.APIKey)
	if err != nil {
		return models.ValidationResult{}, err
	}

	m := models.ModelDescriptor{Name: req.Name, ID: req.ID}
	return s.prober.ValidateModel(ctx, credential, m), nil
}

// ValidateAll probes every catalog entry sequentially. Results flow through
// onResult as they land; one failing model never aborts the batch.
func (s *ModelService) ValidateAll(ctx context.Context, candidateKey string, onResult func(models.ValidationResult)) ([]models.ValidationResult, error) {
	credential, err := s.resolveCredential(ctx, candidateKey)
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	return s.prober.ValidateAll(ctx, credential, catalog, onResult), nil
}

// resolveCredential prefers an explicit candidate key over the stored one.
func (s *ModelService) resolveCredential(ctx context.Context, candidate string) (string, error) {
	if candidate != "" {
		return candidate, nil
	}
	credential, err := s.credentials.APIKey(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			return "", &UnauthorizedError{Message: "No API key configured"}
		}
		return "", err
	}
	return credential, nil
}
