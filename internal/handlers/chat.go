package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gemini-chat-backend/internal/models"
	"gemini-chat-backend/internal/services"
)

type chatService interface {
	Send(ctx context.Context, req models.SendMessageRequest, onFragment func(string)) (*models.Message, error)
	Transcript(ctx context.Context) ([]models.Message, error)
	ClearTranscript(ctx context.Context) error
	Codeblock(ctx context.Context, modelID, code string) (string, error)
}

type ChatHandler struct {
	chat chatService
}

func NewChatHandler(chat chatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chat.Transcript(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// SendMessage runs one generation. Clients that accept text/event-stream get
// fragments as SSE events while the model responds; everyone else gets a
// single JSON reply once the stream closes. Cancelling the request mid-stream
// still commits the partial text.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		h.sendStreaming(w, r, req)
		return
	}

	reply, err := h.chat.Send(r.Context(), req, nil)
	if err != nil {
		var genErr *services.GenerationError
		if errors.As(err, &genErr) {
			// The partial reply is already committed; report both.
			writeJSON(w, http.StatusOK, models.SendMessageResponse{Reply: reply, Error: genErr.Message})
			return
		}
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.SendMessageResponse{Reply: reply})
}

func (h *ChatHandler) sendStreaming(w http.ResponseWriter, r *http.Request, req models.SendMessageRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Streaming unsupported", r))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	reply, err := h.chat.Send(r.Context(), req, func(text string) {
		writeSSE(w, flusher, "fragment", map[string]string{"text": text})
	})
	if err != nil {
		var genErr *services.GenerationError
		if errors.As(err, &genErr) {
			writeSSE(w, flusher, "error", models.SendMessageResponse{Reply: reply, Error: genErr.Message})
			return
		}
		writeSSE(w, flusher, "error", models.SendMessageResponse{Error: err.Error()})
		return
	}

	writeSSE(w, flusher, "done", models.SendMessageResponse{Reply: reply})
}

func (h *ChatHandler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.ClearTranscript(r.Context()); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Transcript cleared"})
}

func (h *ChatHandler) Codeblock(w http.ResponseWriter, r *http.Request) {
	var req models.CodeblockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	markdown, err := h.chat.Codeblock(r.Context(), req.ModelID, req.Code)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.CodeblockResponse{Markdown: markdown})
}

// Export renders the transcript as a downloadable Markdown document.
func (h *ChatHandler) Export(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chat.Transcript(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="chat.md"`)
	w.Write([]byte(services.ExportMarkdown(messages)))
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	w.Write([]byte("event: " + event + "\ndata: " + string(data) + "\n\n"))
	flusher.Flush()
}
