package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gemini-chat-backend/internal/models"
	"gemini-chat-backend/internal/services"
)

type stubSessionService struct {
	session   *models.ChatSession
	saveErr   error
	renamed   string
	deleted   bool
	queuedFor uuid.UUID
}

func (s *stubSessionService) Save(ctx context.Context, req models.SaveSessionRequest) (*models.ChatSession, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	return s.session, nil
}

func (s *stubSessionService) List(ctx context.Context) ([]*models.ChatSession, error) {
	return []*models.ChatSession{s.session}, nil
}

func (s *stubSessionService) Get(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	return s.session, nil
}

func (s *stubSessionService) Restore(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	return s.session, nil
}

func (s *stubSessionService) Rename(ctx context.Context, id uuid.UUID, title string) error {
	s.renamed = title
	return nil
}

func (s *stubSessionService) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = true
	return nil
}

func (s *stubSessionService) RequestSmartRename(ctx context.Context, id uuid.UUID) error {
	s.queuedFor = id
	return nil
}

func sessionRequest(method, path, body string, id uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestSessionHandler_Save(t *testing.T) {
	svc := &stubSessionService{session: &models.ChatSession{ID: uuid.New(), Title: "My Chat"}}
	h := &SessionHandler{sessions: svc}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{"title":"My Chat"}`))
	rr := httptest.NewRecorder()
	h.Save(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
}

func TestSessionHandler_Save_EmptyTranscript(t *testing.T) {
	svc := &stubSessionService{saveErr: &services.ValidationError{Fields: map[string]string{"transcript": "is empty, nothing to save"}}}
	h := &SessionHandler{sessions: svc}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	h.Save(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestSessionHandler_Rename(t *testing.T) {
	svc := &stubSessionService{}
	h := &SessionHandler{sessions: svc}

	id := uuid.New()
	req := sessionRequest(http.MethodPut, "/api/v1/sessions/"+id.String(), `{"title":"New Name"}`, id)
	rr := httptest.NewRecorder()
	h.Rename(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if svc.renamed != "New Name" {
		t.Errorf("Expected rename to \"New Name\", got %q", svc.renamed)
	}
}

func TestSessionHandler_InvalidID(t *testing.T) {
	h := &SessionHandler{sessions: &stubSessionService{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/not-a-uuid", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	h.Get(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestSessionHandler_SmartRename(t *testing.T) {
	svc := &stubSessionService{}
	h := &SessionHandler{sessions: svc}

	id := uuid.New()
	req := sessionRequest(http.MethodPost, "/api/v1/sessions/"+id.String()+"/smart-rename", "", id)
	rr := httptest.NewRecorder()
	h.SmartRename(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Errorf("Expected status 202, got %d", rr.Code)
	}
	if svc.queuedFor != id {
		t.Errorf("Expected job queued for %s, got %s", id, svc.queuedFor)
	}
}
