package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gemini-chat-backend/internal/models"
	"gemini-chat-backend/internal/prompt"
	"gemini-chat-backend/internal/services"
)

type stubSettingsService struct {
	template   models.TemplateResponse
	setErr     error
	credential string
	credErr    error
	cleared    bool
}

func (s *stubSettingsService) Template(ctx context.Context) (models.TemplateResponse, error) {
	return s.template, nil
}

func (s *stubSettingsService) SetTemplate(ctx context.Context, body string) error {
	return s.setErr
}

func (s *stubSettingsService) ClearTemplate(ctx context.Context) error {
	s.cleared = true
	return nil
}

func (s *stubSettingsService) CredentialStatus(ctx context.Context) (models.CredentialStatus, error) {
	return models.CredentialStatus{Configured: s.credential != ""}, nil
}

func (s *stubSettingsService) SetCredential(ctx context.Context, apiKey string) error {
	if s.credErr != nil {
		return s.credErr
	}
	s.credential = apiKey
	return nil
}

func TestSettingsHandler_GetTemplate_Default(t *testing.T) {
	svc := &stubSettingsService{template: models.TemplateResponse{Template: prompt.DefaultTemplate, Custom: false}}
	h := &SettingsHandler{settings: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings/template", nil)
	rr := httptest.NewRecorder()
	h.GetTemplate(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp models.TemplateResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Custom {
		t.Error("Expected the default template to report custom=false")
	}
	if !strings.Contains(resp.Template, prompt.TokenHistoryJSON) {
		t.Error("Expected the history placeholder in the default template")
	}
}

func TestSettingsHandler_SetTemplate_MissingPlaceholders(t *testing.T) {
	svc := &stubSettingsService{setErr: &services.ValidationError{Fields: map[string]string{
		"template": "must contain $(HISTORY_JSON) and $(FORMAL_MODE)",
	}}}
	h := &SettingsHandler{settings: svc}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/template", strings.NewReader(`{"template":"no placeholders"}`))
	rr := httptest.NewRecorder()
	h.SetTemplate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestSettingsHandler_SetCredential_InvalidKey(t *testing.T) {
	svc := &stubSettingsService{credErr: &services.UnauthorizedError{Message: "API key failed validation"}}
	h := &SettingsHandler{settings: svc}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/credential", strings.NewReader(`{"api_key":"bad-key"}`))
	rr := httptest.NewRecorder()
	h.SetCredential(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
}

func TestSettingsHandler_SetCredential_Stored(t *testing.T) {
	svc := &stubSettingsService{}
	h := &SettingsHandler{settings: svc}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/credential", strings.NewReader(`{"api_key":"good-key"}`))
	rr := httptest.NewRecorder()
	h.SetCredential(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if svc.credential != "good-key" {
		t.Errorf("Expected the key stored, got %q", svc.credential)
	}

	var status models.CredentialStatus
	json.NewDecoder(rr.Body).Decode(&status)
	if !status.Configured {
		t.Error("Expected configured=true after storing a key")
	}
}
