package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/lembrete/internal/app"
	"github.com/MarcoPoloResearchLab/lembrete/internal/holidays"
	"github.com/MarcoPoloResearchLab/lembrete/internal/kvstore"
	"github.com/MarcoPoloResearchLab/lembrete/internal/notes"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type testServer struct {
	handler    http.Handler
	controller *app.Controller
	store      *notes.Store
	dispatcher *RealtimeDispatcher
}

type staticIDProvider struct {
	id string
}

func (p staticIDProvider) NewID() (string, error) {
	return p.id, nil
}

type stubTokenValidator struct {
	subject     string
	validateErr error
}

func (s stubTokenValidator) ValidateToken(string) (string, error) {
	if s.validateErr != nil {
		return "", s.validateErr
	}
	return s.subject, nil
}

func newTestServer(t *testing.T, tokens TokenValidator) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := notes.NewStore(notes.StoreConfig{Storage: kvstore.NewMemoryStore()})
	if err != nil {
		t.Fatalf("failed to build note store: %v", err)
	}
	dispatcher := NewRealtimeDispatcher()
	controller, err := app.NewController(app.ControllerConfig{
		Notes:     store,
		Holidays:  holidays.ForYears(2024, 2025),
		WeekStart: time.Sunday,
		Clock: func() time.Time {
			return time.Date(2024, time.March, 20, 9, 0, 0, 0, time.UTC)
		},
		Notifier: dispatcher,
	})
	if err != nil {
		t.Fatalf("failed to build controller: %v", err)
	}
	handler, err := NewHTTPHandler(Dependencies{
		Controller:     controller,
		Notes:          store,
		Dispatcher:     dispatcher,
		TokenValidator: tokens,
		IDProvider:     staticIDProvider{id: "req-1"},
		Logger:         zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	return testServer{handler: handler, controller: controller, store: store, dispatcher: dispatcher}
}

func (s testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, request.WithContext(context.Background()))
	return recorder
}
