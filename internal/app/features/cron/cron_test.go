package cron

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	errorsfeature "github.com/dalemusser/labcarbon/internal/app/features/errors"
	"github.com/dalemusser/labcarbon/internal/app/system/recorder"
	"go.uber.org/zap"
)

type stubRecorder struct {
	report recorder.Report
	err    error
	calls  int
}

func (s *stubRecorder) Run(context.Context, time.Time) (recorder.Report, error) {
	s.calls++
	return s.report, s.err
}

func serve(h *Handler, secret, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/record-emissions", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	Routes(h, secret, zap.NewNop()).ServeHTTP(rec, req)
	return rec
}

func newHandler(rec Recorder) *Handler {
	logger := zap.NewNop()
	return NewHandler(rec, errorsfeature.NewErrorLogger(logger), logger)
}

func TestRecordEmissions(t *testing.T) {
	stub := &stubRecorder{report: recorder.Report{
		Success:  true,
		Message:  "Recorded daily emissions for 3 equipment items",
		Recorded: 3,
	}}
	rec := serve(newHandler(stub), "s3cret", "Bearer s3cret")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got recorder.Report
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Success || got.Recorded != 3 || got.Errors != nil {
		t.Errorf("report = %+v", got)
	}
}

func TestRecordEmissions_Unauthorized(t *testing.T) {
	stub := &stubRecorder{}
	rec := serve(newHandler(stub), "s3cret", "Bearer wrong")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if stub.calls != 0 {
		t.Error("recorder should not run for an unauthorized request")
	}
}

func TestRecordEmissions_Failures(t *testing.T) {
	tests := []struct {
		name string
		rec  Recorder
	}{
		{"no backend", nil},
		{"organizations unavailable", &stubRecorder{err: errors.New("failed to fetch organizations: timeout")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newHandler(tt.rec), "", "")
			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status = %d, want 500", rec.Code)
			}
		})
	}
}
