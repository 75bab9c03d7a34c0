package observability_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitattr/pkg/observability"
)

func serve(t *testing.T, handler http.Handler, path string) (int, map[string]string) {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]string

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec.Code, body
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	code, body := serve(t, observability.HealthHandler(), observability.PathHealthz)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadyHandler_AllChecksPass(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }

	code, body := serve(t, observability.ReadyHandler(ok, ok), observability.PathReadyz)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestReadyHandler_FailingCheck(t *testing.T) {
	t.Parallel()

	failing := func(context.Context) error { return errors.New("git binary not found") }

	code, body := serve(t, observability.ReadyHandler(failing), observability.PathReadyz)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unavailable", body["status"])
	assert.Equal(t, "git binary not found", body["error"])
}

func TestTelemetryMux_WithoutMetrics(t *testing.T) {
	t.Parallel()

	mux := observability.NewTelemetryMux(nil)

	code, _ := serve(t, mux, observability.PathHealthz)
	assert.Equal(t, http.StatusOK, code)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, observability.PathMetrics, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
