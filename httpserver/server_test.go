package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NillionNetwork/nilcc-attester/report"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(&fakeReporter{}, EnvironmentSpec{NilccVersion: "0.1.0", VMType: VMTypeCPU, CPUCount: 1},
		&report.Report{Parsed: json.RawMessage(`{}`)}, nil, logger)

	srv, err := New(&HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      logger,
		DrainDuration:            time.Millisecond,
		GracefulShutdownDuration: time.Second,
	}, handler)
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouterServesReportRoutes(t *testing.T) {
	router := testServer(t).getRouter()

	assert.Equal(t, http.StatusOK, get(t, router, "/health").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/about").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/api/v1/report").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/api/v2/report").Code)
	assert.Equal(t, http.StatusNotFound, get(t, router, "/api/v3/report").Code)
}

func TestDrainTogglesReadiness(t *testing.T) {
	srv := testServer(t)
	router := srv.getRouter()

	assert.Equal(t, http.StatusOK, get(t, router, "/readyz").Code)

	assert.Equal(t, http.StatusOK, get(t, router, "/drain").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, router, "/readyz").Code)

	assert.Equal(t, http.StatusOK, get(t, router, "/undrain").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/readyz").Code)
}
