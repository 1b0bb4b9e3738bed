package httpkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"trashtrack_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

func serveError(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		HandleError(c, err)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHandleErrorMapsAppErrors(t *testing.T) {
	rec := serveError(fmt.Errorf("lookup: %w", apperr.NotFound("report not found")))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "report not found" || body.RequestID != "req-42" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestHandleErrorHidesUnknownErrors(t *testing.T) {
	rec := serveError(errors.New("pq: connection refused"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != "internal server error" {
		t.Fatalf("leaked error: %q", body.Error)
	}
}
