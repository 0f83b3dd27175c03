package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/civicreach/backend/internal/classify"
	"github.com/civicreach/backend/internal/db"
	"github.com/civicreach/backend/internal/models"
	"github.com/civicreach/backend/internal/routing"
)

type emptyConfigStore struct{}

func (emptyConfigStore) ListRouteConfigs(ctx context.Context) ([]models.RouteTemplate, error) {
	return nil, nil
}

func (emptyConfigStore) GetSeverityConfig(ctx context.Context, level string) (models.SeverityConfig, error) {
	return models.SeverityConfig{}, db.ErrNotFound
}

func (emptyConfigStore) UpsertRouteConfig(ctx context.Context, t models.RouteTemplate, position int) error {
	return nil
}

func (emptyConfigStore) UpsertSeverityConfig(ctx context.Context, c models.SeverityConfig) error {
	return nil
}

func testHandler() *Handler {
	gin.SetMode(gin.TestMode)
	return &Handler{
		Classifier: classify.MockClassifier{ModelVersion: "mock-v1"},
		Routing:    routing.NewConfigSource(emptyConfigStore{}, nil, 0, zerolog.Nop()),
		Validator:  validator.New(),
		Logger:     zerolog.Nop(),
	}
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestQueueUpdateRejectsMissingComplaintID(t *testing.T) {
	h := testHandler()
	r := gin.New()
	r.POST("/api/queue/update", h.QueueUpdate)

	w := postJSON(t, r, "/api/queue/update", `{"action":"resolve"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestQueueUpdateRejectsUnknownAction(t *testing.T) {
	h := testHandler()
	r := gin.New()
	r.POST("/api/queue/update", h.QueueUpdate)

	w := postJSON(t, r, "/api/queue/update", `{"complaintId":"CIR-20260301-1234","action":"archive"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestQueueUpdateRejectsMalformedBody(t *testing.T) {
	h := testHandler()
	r := gin.New()
	r.POST("/api/queue/update", h.QueueUpdate)

	w := postJSON(t, r, "/api/queue/update", `{`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestClassifyRequiresDescriptionOrImage(t *testing.T) {
	h := testHandler()
	r := gin.New()
	r.POST("/api/classify", h.Classify)

	w := postJSON(t, r, "/api/classify", `{"description":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestClassifyReturnsAnalysisWithRoutingPreview(t *testing.T) {
	h := testHandler()
	r := gin.New()
	r.POST("/api/classify", h.Classify)

	w := postJSON(t, r, "/api/classify", `{"description":"deep pothole blocking traffic","location":{"lat":13.05,"lng":77.60}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Analysis    models.IssueAnalysis  `json:"analysis"`
		ComplaintID string                `json:"complaintId"`
		Status      string                `json:"status"`
		History     []models.HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !regexp.MustCompile(`^CIR-\d{8}-\d{4}$`).MatchString(resp.ComplaintID) {
		t.Fatalf("unexpected complaint id: %s", resp.ComplaintID)
	}
	if resp.Analysis.Routing.Department != "Municipal Roads Department" {
		t.Fatalf("pothole must route to roads, got %s", resp.Analysis.Routing.Department)
	}
	if resp.Analysis.Routing.Jurisdiction != "North Zone" {
		t.Fatalf("lat 13.05 must land in North Zone, got %s", resp.Analysis.Routing.Jurisdiction)
	}
	if len(resp.History) != 3 {
		t.Fatalf("expected tracking history scaffold, got %d entries", len(resp.History))
	}
}

func TestSubmitReportRequiresAnalysis(t *testing.T) {
	h := testHandler()
	r := gin.New()
	r.POST("/api/reports", h.SubmitReport)

	w := postJSON(t, r, "/api/reports", `{"location":{"lat":13.0,"lng":77.6}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
