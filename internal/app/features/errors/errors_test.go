package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestHandler(t *testing.T) {
	h := NewHandler()

	tests := []struct {
		name       string
		serve      http.HandlerFunc
		wantStatus int
	}{
		{"not found", h.NotFound, http.StatusNotFound},
		{"method not allowed", h.MethodNotAllowed, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.serve(rec, httptest.NewRequest(http.MethodPost, "/api/nowhere", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("error message missing")
			}
		})
	}
}

func TestErrorLogger(t *testing.T) {
	errLog := NewErrorLogger(zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/test", nil)

	// Should not panic, with or without an error.
	errLog.Log(req, "test error", nil)
	errLog.LogWithFields(req, "test error", stderrors.New("boom"), zap.String("extra", "field"))
}
