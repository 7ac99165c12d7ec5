package services

import (
	"context"
	"errors"
	"testing"

	"gemini-chat-backend/internal/models"
	"gemini-chat-backend/internal/prompt"
	"gemini-chat-backend/internal/repository"
)

type fakeTemplateStore struct {
	override string
}

func (f *fakeTemplateStore) GetOverride(ctx context.Context) (string, error) {
	return f.override, nil
}

func (f *fakeTemplateStore) SetOverride(ctx context.Context, body string) error {
	f.override = body
	return nil
}

func (f *fakeTemplateStore) ClearOverride(ctx context.Context) error {
	f.override = ""
	return nil
}

type fakeCredentialStore struct {
	secrets map[string]string
}

func (f *fakeCredentialStore) Set(ctx context.Context, name, secret string) error {
	if f.secrets == nil {
		f.secrets = make(map[string]string)
	}
	f.secrets[name] = secret
	return nil
}

func (f *fakeCredentialStore) Exists(ctx context.Context, name string) (bool, error) {
	_, ok := f.secrets[name]
	return ok, nil
}

func newTestSettingsService(prober *fakeProber) (*SettingsService, *fakeTemplateStore, *fakeCredentialStore) {
	templates := &fakeTemplateStore{}
	credentials := &fakeCredentialStore{}
	svc := NewSettingsService(templates, credentials, fakeCatalog{}, prober)
	return svc, templates, credentials
}

func TestSettingsService_Template_DefaultWhenNoOverride(t *testing.T) {
	svc, _, _ := newTestSettingsService(&fakeProber{})

	resp, err := svc.Template(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Custom {
		t.Error("Expected custom=false without an override")
	}
	if resp.Template != prompt.DefaultTemplate {
		t.Error("Expected the built-in default template")
	}
}

func TestSettingsService_SetTemplate_RequiresPlaceholders(t *testing.T) {
	svc, templates, _ := newTestSettingsService(&fakeProber{})

	err := svc.SetTemplate(context.Background(), "just some text with $(MODELNAME)")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected *ValidationError, got %v", err)
	}
	if templates.override != "" {
		t.Error("Expected the invalid template not stored")
	}

	body := "history: $(HISTORY_JSON) formal: $(FORMAL_MODE)"
	if err := svc.SetTemplate(context.Background(), body); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if templates.override != body {
		t.Error("Expected the valid template stored verbatim")
	}

	resp, _ := svc.Template(context.Background())
	if !resp.Custom || resp.Template != body {
		t.Errorf("Expected the override active, got %+v", resp)
	}
}

func TestSettingsService_ClearTemplate(t *testing.T) {
	svc, templates, _ := newTestSettingsService(&fakeProber{})
	templates.override = "custom $(HISTORY_JSON) $(FORMAL_MODE)"

	if err := svc.ClearTemplate(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	resp, _ := svc.Template(context.Background())
	if resp.Custom {
		t.Error("Expected the default template after clearing")
	}
}

func TestSettingsService_SetCredential_ProbeGatesStorage(t *testing.T) {
	prober := &fakeProber{outcome: models.ValidationError}
	svc, _, credentials := newTestSettingsService(prober)

	err := svc.SetCredential(context.Background(), "bad-key")
	var unauthorized *UnauthorizedError
	if !errors.As(err, &unauthorized) {
		t.Fatalf("Expected *UnauthorizedError for a failing key, got %v", err)
	}
	if _, ok := credentials.secrets[repository.KeyAPI]; ok {
		t.Error("Expected the failing key not stored")
	}

	prober.outcome = models.ValidationSuccess
	if err := svc.SetCredential(context.Background(), "good-key"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if credentials.secrets[repository.KeyAPI] != "good-key" {
		t.Error("Expected the passing key stored")
	}
	if prober.lastKey != "good-key" {
		t.Errorf("Expected the candidate key probed, got %q", prober.lastKey)
	}

	status, _ := svc.CredentialStatus(context.Background())
	if !status.Configured {
		t.Error("Expected configured=true after storing")
	}
}

func TestSettingsService_SetCredential_Blank(t *testing.T) {
	svc, _, _ := newTestSettingsService(&fakeProber{})

	err := svc.SetCredential(context.Background(), "   ")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Errorf("Expected *ValidationError, got %v", err)
	}
}
