package services

import (
	"context"
	"errors"
	"testing"

	"gemini-chat-backend/internal/models"
	"gemini-chat-backend/internal/repository"
)

type fakeCatalogStore struct {
	entries []models.ModelDescriptor
	addErr  error
}

func (f *fakeCatalogStore) List(ctx context.Context) ([]models.ModelDescriptor, error) {
	return f.entries, nil
}

func (f *fakeCatalogStore) Add(ctx context.Context, m models.ModelDescriptor) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.entries = append(f.entries, m)
	return nil
}

func (f *fakeCatalogStore) Remove(ctx context.Context, modelID string) error {
	return nil
}

func (f *fakeCatalogStore) Reset(ctx context.Context) error {
	f.entries = models.DefaultModels()
	return nil
}

type fakeProber struct {
	outcome  models.ValidationOutcome
	lastKey  string
	probeIDs []string
}

func (f *fakeProber) ValidateModel(ctx context.Context, credential string, m models.ModelDescriptor) models.ValidationResult {
	f.lastKey = credential
	f.probeIDs = append(f.probeIDs, m.ID)
	return models.ValidationResult{Model: m, Outcome: f.outcome}
}

func (f *fakeProber) ValidateAll(ctx context.Context, credential string, catalog []models.ModelDescriptor, onResult func(models.ValidationResult)) []models.ValidationResult {
	return RunValidation(ctx, catalog, func(ctx context.Context, m models.ModelDescriptor) models.ValidationResult {
		return f.ValidateModel(ctx, credential, m)
	}, onResult)
}

func TestModelService_Add_ProbeGatesEntry(t *testing.T) {
	catalog := &fakeCatalogStore{}
	prober := &fakeProber{outcome: models.ValidationError}
	svc := NewModelService(catalog, prober, &fakeCredentials{key: "stored-key"})

	err := svc.Add(context.Background(), models.AddModelRequest{Name: "Flash", ID: "gemini-2.0-flash"})
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected *ValidationError for an unreachable model, got %v", err)
	}
	if len(catalog.entries) != 0 {
		t.Error("Expected the model kept out of the catalog")
	}

	prober.outcome = models.ValidationSuccess
	if err := svc.Add(context.Background(), models.AddModelRequest{Name: "Flash", ID: "gemini-2.0-flash"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(catalog.entries) != 1 {
		t.Error("Expected the model added after a passing probe")
	}
}

func TestModelService_Add_Duplicate(t *testing.T) {
	catalog := &fakeCatalogStore{addErr: repository.ErrModelExists}
	svc := NewModelService(catalog, &fakeProber{outcome: models.ValidationSuccess}, &fakeCredentials{key: "stored-key"})

	err := svc.Add(context.Background(), models.AddModelRequest{Name: "Flash", ID: "gemini-2.0-flash"})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("Expected *ConflictError, got %v", err)
	}
}

func TestModelService_Validate_PrefersCandidateKey(t *testing.T) {
	prober := &fakeProber{outcome: models.ValidationSuccess}
	svc := NewModelService(&fakeCatalogStore{}, prober, &fakeCredentials{key: "stored-key"})

	_, err := svc.Validate(context.Background(), models.ValidateModelRequest{Name: "Flash", ID: "gemini-2.0-flash", APIKey: "candidate-key"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if prober.lastKey != "candidate-key" {
		t.Errorf("Expected the candidate key used, got %q", prober.lastKey)
	}
}

func TestModelService_ValidateAll_UsesStoredKey(t *testing.T) {
	prober := &fakeProber{outcome: models.ValidationSuccess}
	catalog := &fakeCatalogStore{entries: models.DefaultModels()}
	svc := NewModelService(catalog, prober, &fakeCredentials{key: "stored-key"})

	results, err := svc.ValidateAll(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if prober.lastKey != "stored-key" {
		t.Errorf("Expected the stored key used, got %q", prober.lastKey)
	}
	if len(results) != len(models.DefaultModels()) {
		t.Errorf("Expected one result per catalog entry, got %d", len(results))
	}
}

func TestModelService_ValidateAll_NoCredential(t *testing.T) {
	svc := NewModelService(&fakeCatalogStore{}, &fakeProber{}, &fakeCredentials{err: repository.ErrCredentialNotFound})

	_, err := svc.ValidateAll(context.Background(), "", nil)
	var unauthorized *UnauthorizedError
	if !errors.As(err, &unauthorized) {
		t.Errorf("Expected *UnauthorizedError without a stored key, got %v", err)
	}
}
