package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"gemini-chat-backend/internal/models"
)

type settingsService interface {
	Template(ctx context.Context) (models.TemplateResponse, error)
	SetTemplate(ctx context.Context, body string) error
	ClearTemplate(ctx context.Context) error
	CredentialStatus(ctx context.Context) (models.CredentialStatus, error)
	SetCredential(ctx context.Context, apiKey string) error
}

type SettingsHandler struct {
	settings settingsService
}

func NewSettingsHandler(settings settingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.settings.Template(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

func (h *SettingsHandler) SetTemplate(w http.ResponseWriter, r *http.Request) {
	var req models.SetTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.settings.SetTemplate(r.Context(), req.Template); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Template saved"})
}

func (h *SettingsHandler) ClearTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.settings.ClearTemplate(r.Context()); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Template reset to default"})
}

func (h *SettingsHandler) GetCredential(w http.ResponseWriter, r *http.Request) {
	status, err := h.settings.CredentialStatus(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *SettingsHandler) SetCredential(w http.ResponseWriter, r *http.Request) {
	var req models.SetCredentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.settings.SetCredential(r.Context(), req.APIKey); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.CredentialStatus{Configured: true})
}
