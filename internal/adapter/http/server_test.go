package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/cinderwatch/wildfire-detect-service/internal/adapter/http"
	"github.com/cinderwatch/wildfire-detect-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func newTestServer(t *testing.T, readyErr error) *httpadapter.Server {
	t.Helper()
	det, err := domain.NewDefaultDetector()
	require.NoError(t, err)
	srv, err := httpadapter.NewServer(":0", det, &mockReadiness{err: readyErr}, slog.Default())
	require.NoError(t, err)
	return srv
}

func postDetect(t *testing.T, srv *httpadapter.Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/detect", strings.NewReader(body))
	srv.ServeHTTP(rec, req)
	return rec
}

func readingsJSON(t *testing.T, readings []domain.Reading) string {
	t.Helper()
	data, err := json.Marshal(readings)
	require.NoError(t, err)
	return string(data)
}

func testReadings(n int, temperature, smoke, wind float64) []domain.Reading {
	base := time.Date(2026, time.July, 14, 10, 0, 0, 0, time.UTC)
	readings := make([]domain.Reading, 0, n)
	for i := 0; i < n; i++ {
		readings = append(readings, domain.Reading{
			Timestamp:   base.Add(time.Duration(i) * time.Minute).Format(time.RFC3339),
			Temperature: temperature,
			Smoke:       smoke,
			Wind:        wind,
		})
	}
	return readings
}

type validationFailure struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

func decodeValidationFailure(t *testing.T, rec *httptest.ResponseRecorder) validationFailure {
	t.Helper()
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, "body: %s", rec.Body.String())

	var failure validationFailure
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &failure))
	assert.Equal(t, "request failed validation", failure.Error)
	require.NotEmpty(t, failure.Details)
	return failure
}

func TestDetectScoresCalmBatch(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postDetect(t, srv, readingsJSON(t, testReadings(20, 25.0, 0.01, 2.0)))

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var summary domain.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Zero(t, summary.EventCount)
	assert.Empty(t, summary.Events)
	assert.Equal(t, 0.6, summary.MaxScore)
}

func TestDetectFlagsBurningBatch(t *testing.T) {
	srv := newTestServer(t, nil)

	readings := testReadings(10, 15.0, 0.0, 12.0)
	for i := 5; i < 10; i++ {
		readings[i].Temperature = 95.0
		readings[i].Smoke = 0.9
	}
	rec := postDetect(t, srv, readingsJSON(t, readings))

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	var summary domain.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.EventCount)
	require.Len(t, summary.Events, 1)
	assert.Greater(t, summary.Events[0].Score, 70.0)
	assert.Greater(t, summary.MaxScore, 70.0)
}

func TestDetectRejectsEmptyBatch(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postDetect(t, srv, `[]`)

	decodeValidationFailure(t, rec)
}

func TestDetectRejectsNonArrayBody(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postDetect(t, srv, `{"site_id":"site-ridge-7"}`)

	decodeValidationFailure(t, rec)
}

func TestDetectRejectsMissingField(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postDetect(t, srv, `[{"timestamp":"2026-07-14T10:00:00Z","temperature":20,"smoke":0.1}]`)

	failure := decodeValidationFailure(t, rec)
	assert.Contains(t, strings.Join(failure.Details, "\n"), "wind")
}

func TestDetectRejectsOutOfRangeSmoke(t *testing.T) {
	srv := newTestServer(t, nil)

	readings := testReadings(5, 25.0, 0.01, 2.0)
	readings[2].Smoke = 1.5
	rec := postDetect(t, srv, readingsJSON(t, readings))

	failure := decodeValidationFailure(t, rec)
	assert.Contains(t, strings.Join(failure.Details, "\n"), "smoke")
}

func TestDetectRejectsBadTimestamp(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postDetect(t, srv, `[{"timestamp":"yesterday","temperature":20,"smoke":0.1,"wind":2}]`)

	failure := decodeValidationFailure(t, rec)
	assert.Contains(t, strings.Join(failure.Details, "\n"), "timestamp")
}

func TestDetectRejectsInvalidJSON(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postDetect(t, srv, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(t, fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
