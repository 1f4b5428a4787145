package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func okCheck(context.Context) error { return nil }

func failingCheck(context.Context) error { return errors.New("connection refused") }

func serveHealth(t *testing.T, handler *Handler) (int, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var response Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return w.Code, response
}

func TestHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		checkers   map[string]*SimpleChecker
		wantCode   int
		wantStatus Status
	}{
		{
			name:       "no checkers",
			wantCode:   http.StatusOK,
			wantStatus: StatusHealthy,
		},
		{
			name: "all healthy",
			checkers: map[string]*SimpleChecker{
				"storage": NewSimpleChecker("storage", okCheck),
				"catalog": NewOptionalChecker("catalog", okCheck),
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusHealthy,
		},
		{
			name: "optional failure degrades",
			checkers: map[string]*SimpleChecker{
				"storage": NewSimpleChecker("storage", okCheck),
				"catalog": NewOptionalChecker("catalog", failingCheck),
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusDegraded,
		},
		{
			name: "critical failure wins over degraded",
			checkers: map[string]*SimpleChecker{
				"storage": NewSimpleChecker("storage", failingCheck),
				"catalog": NewOptionalChecker("catalog", failingCheck),
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler("v1.0.0")
			for name, checker := range tt.checkers {
				handler.RegisterChecker(name, checker)
			}

			code, response := serveHealth(t, handler)
			require.Equal(t, tt.wantCode, code)
			require.Equal(t, tt.wantStatus, response.Status)
			require.Equal(t, "v1.0.0", response.Version)
			require.Len(t, response.Checks, len(tt.checkers))
		})
	}
}

func TestHandler_FailureMessageReported(t *testing.T) {
	handler := NewHandler("dev")
	handler.RegisterChecker("storage", NewSimpleChecker("storage", failingCheck))

	_, response := serveHealth(t, handler)
	require.Equal(t, "connection refused", response.Checks["storage"].Message)
}

func TestHandler_CheckTimeout(t *testing.T) {
	handler := NewHandler("dev")
	handler.SetCheckTimeout(20 * time.Millisecond)
	handler.RegisterChecker("slow", NewSimpleChecker("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	start := time.Now()
	response := handler.Evaluate(context.Background())

	require.Equal(t, StatusUnhealthy, response.Status)
	require.Less(t, time.Since(start), time.Second)
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		checker  *SimpleChecker
		wantCode int
		wantBody string
	}{
		{name: "ready", checker: NewSimpleChecker("storage", okCheck), wantCode: http.StatusOK, wantBody: "ready"},
		{name: "degraded is ready", checker: NewOptionalChecker("catalog", failingCheck), wantCode: http.StatusOK, wantBody: "ready"},
		{name: "not ready", checker: NewSimpleChecker("storage", failingCheck), wantCode: http.StatusServiceUnavailable, wantBody: "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler("dev")
			handler.RegisterChecker(tt.checker.name, tt.checker)

			w := httptest.NewRecorder()
			handler.ReadinessHandler(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			require.Equal(t, tt.wantCode, w.Code)
			require.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestLivenessHandler(t *testing.T) {
	w := httptest.NewRecorder()
	LivenessHandler(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}
