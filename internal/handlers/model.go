package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gemini-chat-backend/internal/models"
)

type modelService interface {
	List(ctx context.Context) ([]models.ModelDescriptor, error)
	Add(ctx context.Context, req models.AddModelRequest) error
	Remove(ctx context.Context, modelID string) error
	Reset(ctx context.Context) ([]models.ModelDescriptor, error)
	Validate(ctx context.Context, req models.ValidateModelRequest) (models.ValidationResult, error)
	ValidateAll(ctx context.Context, candidateKey string, onResult func(models.ValidationResult)) ([]models.ValidationResult, error)
}

type ModelHandler struct {
	models modelService
}

func NewModelHandler(models modelService) *ModelHandler {
	return &ModelHandler{models: models}
}

func (h *ModelHandler) List(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.models.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *ModelHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.AddModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.models.Add(r.Context(), req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Model added"})
}

func (h *ModelHandler) Remove(w http.ResponseWriter, r *http.Request) {
	modelID := chi.URLParam(r, "id")
	if modelID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Model ID is required", r))
		return
	}

	if err := h.models.Remove(r.Context(), modelID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Model removed"})
}

func (h *ModelHandler) Reset(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.models.Reset(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *ModelHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	result, err := h.models.Validate(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ValidateAll probes every catalog model sequentially. Clients that accept
// text/event-stream see each result as it lands; others get the full batch
// once it finishes. The batch runs to completion even when models fail.
func (h *ModelHandler) ValidateAll(w http.ResponseWriter, r *http.Request) {
	var req models.ValidateAllRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		h.validateAllStreaming(w, r, req.APIKey)
		return
	}

	results, err := h.models.ValidateAll(r.Context(), req.APIKey, nil)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *ModelHandler) validateAllStreaming(w http.ResponseWriter, r *http.Request, candidateKey string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Streaming unsupported", r))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	results, err := h.models.ValidateAll(r.Context(), candidateKey, func(res models.ValidationResult) {
		writeSSE(w, flusher, "result", res)
	})
	if err != nil {
		writeSSE(w, flusher, "error", map[string]string{"message": err.Error()})
		return
	}

	writeSSE(w, flusher, "done", results)
}
