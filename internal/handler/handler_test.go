package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/soc-intake/internal/domain"
	"github.com/soc-intake/internal/normalize"
	"github.com/soc-intake/internal/service"
	"github.com/soc-intake/internal/store"
	"github.com/soc-intake/pkg/sanitizer"
	"go.uber.org/zap"
)

const (
	testMaxBody = 2048

	bruteForceLine = `date=2024-05-01 time=14:30:00 devname="FG-HQ" level="critical" ` +
		`srcip=203.0.113.7 action="deny" msg="Multiple Failed Login attempts - Brute Force"`
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	store  *store.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := store.NewMemoryStore()
	svc := service.NewTickets(
		normalize.NewPipeline(zap.NewNop()),
		s,
		sanitizer.New(testMaxBody, 100),
		service.TicketsConfig{Reporter: "soc@example.com", Platform: "FortiSIEM", ResummarizeWorkers: 2},
		zap.NewNop(),
	)
	return &testServer{
		router: NewRouter(svc, s, testMaxBody, zap.NewNop()),
		store:  s,
	}
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) domain.IntakeResponse {
	t.Helper()
	var resp domain.IntakeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestIncidentHandler_Create(t *testing.T) {
	for _, path := range []string{"/api/v1/incidents", "/api/v1/fortisiem-incident"} {
		t.Run(path, func(t *testing.T) {
			ts := newTestServer(t)

			w := ts.do(http.MethodPost, path, bruteForceLine)
			if w.Code != http.StatusCreated {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}

			resp := decodeResponse(t, w)
			if !resp.Success || resp.Ticket == nil {
				t.Fatalf("response = %+v", resp)
			}
			if resp.Ticket.Summary != "Multiple Failed Login attempts - Brute Force" {
				t.Errorf("Summary = %q", resp.Ticket.Summary)
			}
			if resp.Ticket.Severity != domain.SeverityCritical {
				t.Errorf("Severity = %q", resp.Ticket.Severity)
			}

			if _, err := ts.store.Get(context.Background(), resp.Ticket.ID); err != nil {
				t.Errorf("ticket not stored: %v", err)
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID header")
			}
		})
	}
}

func TestIncidentHandler_Create_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"whitespace body", " \n ", http.StatusBadRequest},
		{"malformed xml", `<incident><name>x</incident>`, http.StatusBadRequest},
		{"too large", strings.Repeat("k=v ", testMaxBody), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)

			w := ts.do(http.MethodPost, "/api/v1/incidents", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			resp := decodeResponse(t, w)
			if resp.Success || resp.Error == "" {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestIncidentHandler_Normalize(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/v1/normalize",
		`<incident incidentId="42" severity="5"><name>Port Scan detected</name></incident>`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	resp := decodeResponse(t, w)
	if resp.Incident == nil {
		t.Fatal("missing incident")
	}
	if resp.Incident.IncidentID != "42" || resp.Incident.SeverityName != domain.SeverityHigh {
		t.Errorf("incident = %+v", resp.Incident)
	}
	if resp.Incident.Category != "Security / Discovery" {
		t.Errorf("Category = %q", resp.Incident.Category)
	}

	list, _ := ts.store.List(context.Background())
	if len(list) != 0 {
		t.Errorf("normalize stored %d tickets", len(list))
	}
}

func TestTicketHandler_Get(t *testing.T) {
	ts := newTestServer(t)

	created := decodeResponse(t, ts.do(http.MethodPost, "/api/v1/incidents", bruteForceLine))

	w := ts.do(http.MethodGet, "/api/v1/tickets/"+created.Ticket.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decodeResponse(t, w); got.Ticket.ID != created.Ticket.ID {
		t.Errorf("ticket ID = %q, want %q", got.Ticket.ID, created.Ticket.ID)
	}

	if w := ts.do(http.MethodGet, "/api/v1/tickets/does-not-exist", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing ticket status = %d, want 404", w.Code)
	}
}

func TestTicketHandler_Resummarize(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodPost, "/api/v1/incidents", bruteForceLine)

	w := ts.do(http.MethodPost, "/api/v1/admin/tickets/resummarize", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Success bool                     `json:"success"`
		Report  domain.ResummarizeReport `json:"report"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !body.Success || body.Report.Scanned != 1 || body.Report.Updated != 1 {
		t.Errorf("response = %+v", body)
	}
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestReadyHandler(t *testing.T) {
	tests := []struct {
		name       string
		ping       pingFunc
		wantStatus int
	}{
		{"store up", func(context.Context) error { return nil }, http.StatusOK},
		{"store down", func(context.Context) error { return errors.New("database is locked") }, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/ready", NewReadyHandler(tt.ping, zap.NewNop()).Handle)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	ts := newTestServer(t)
	if w := ts.do(http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestRequestIDMiddleware_KeepsCallerID(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodOptions, "/api/v1/incidents", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryMiddleware(zap.NewNop()))
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
