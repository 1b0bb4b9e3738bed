package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"trashtrack_backend/internal/reports/service"
	"trashtrack_backend/platform/validator"
)

// Every request here is rejected before the service is reached.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(service.New(service.Deps{}), validator.New())
	engine := gin.New()
	engine.POST("/reports", h.Submit)
	engine.GET("/reports", h.List)
	engine.GET("/reports/trends", h.Trends)
	engine.GET("/reports/:id", h.GetByID)
	engine.PATCH("/reports/:id/status", h.UpdateStatus)
	return engine
}

func serve(engine *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestSubmitRejectsUnknownGarbageType(t *testing.T) {
	rec := serve(newTestRouter(), http.MethodPost, "/reports", `{"garbageType":"Nuclear","latitude":1,"longitude":2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitRejectsOutOfRangeLatitude(t *testing.T) {
	rec := serve(newTestRouter(), http.MethodPost, "/reports", `{"garbageType":"General","latitude":123,"longitude":2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSubmitRejectsMalformedJSON(t *testing.T) {
	rec := serve(newTestRouter(), http.MethodPost, "/reports", `{"garbageType":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetByIDRejectsInvalidID(t *testing.T) {
	rec := serve(newTestRouter(), http.MethodGet, "/reports/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListRejectsLimitAboveMaximum(t *testing.T) {
	rec := serve(newTestRouter(), http.MethodGet, "/reports?limit=500", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTrendsRejectsUnknownWindow(t *testing.T) {
	rec := serve(newTestRouter(), http.MethodGet, "/reports/trends?window=last-year", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	rec := serve(newTestRouter(), http.MethodPatch,
		"/reports/6f1c2f8e-4d8a-4a7e-9f55-3c3c0a0e9b11/status", `{"status":"Lost"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
