package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/statlab/internal/analytics"
	"github.com/inferloop/statlab/internal/api/middleware"
	"github.com/inferloop/statlab/internal/observability/metrics"
)

var sample = []float64{
	4.2, 5.1, 3.8, 4.9, 5.5, 4.4, 5.0, 4.7, 3.9, 5.3,
	4.6, 4.8, 5.2, 4.1, 4.5, 5.7, 4.3, 4.0, 5.4, 4.95,
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	logger, _ := logtest.NewNullLogger()

	pm, err := metrics.NewPrometheusMetrics(nil, logger)
	require.NoError(t, err)

	engine := analytics.NewEngine(nil, logger, pm)
	return NewRouter(engine, pm, logger, "test").SetupRoutes()
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	appErr, ok := body["error"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	return appErr["code"].(string)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestReadiness(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	checks := body["checks"].([]interface{})
	require.Len(t, checks, 1)
	assert.Equal(t, "engine", checks[0].(map[string]interface{})["name"])

	logger, _ := logtest.NewNullLogger()
	engine := analytics.NewEngine(nil, logger, nil)
	failing := NewRouter(engine, nil, logger, "test",
		WithCheck("store", func(ctx context.Context) error { return errors.New("unreachable") }),
	).SetupRoutes()

	rec = httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", decodeBody(t, rec)["status"])
}

func TestDescribeEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := post(t, h, "/api/v1/describe", map[string]interface{}{"data": sample, "bins": 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, float64(20), summary["count"])
	assert.InDelta(t, 4.7175, summary["mean"], 1e-12)
	assert.Len(t, body["histogram"], 4)
}

func TestValidationErrorsRenderAs400(t *testing.T) {
	h := newTestServer(t)

	rec := post(t, h, "/api/v1/intervals/mean", map[string]interface{}{"data": []float64{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EMPTY_DATA", errorCode(t, rec))

	rec = post(t, h, "/api/v1/intervals/mean", map[string]interface{}{"data": sample, "confidenceLevel": 1.5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_PARAMETER", errorCode(t, rec))

	rec = post(t, h, "/api/v1/estimate", map[string]interface{}{"data": sample, "family": "cauchy"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UNSUPPORTED_DISTRIBUTION", errorCode(t, rec))

	rec = post(t, h, "/api/v1/intervals/two-sample", map[string]interface{}{
		"data1": []float64{1, 2, 3}, "data2": []float64{1, 2}, "method": "paired",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "LENGTH_MISMATCH", errorCode(t, rec))
}

func TestUnboundedSizesRenderAs400(t *testing.T) {
	h := newTestServer(t)

	rec := post(t, h, "/api/v1/describe", map[string]interface{}{"data": []float64{1, 2, 3}, "bins": 1 << 50})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "INVALID_PARAMETER", errorCode(t, rec))

	rec = post(t, h, "/api/v1/gof", map[string]interface{}{
		"data": sample, "testType": "chi-square", "distribution": "normal", "bins": 1 << 50,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "INVALID_PARAMETER", errorCode(t, rec))

	rec = post(t, h, "/api/v1/power", map[string]interface{}{
		"mu1": 105, "mu0": 100, "sigma": 15, "n": 50, "includeCurve": true, "curveStep": 1e-8,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "INVALID_PARAMETER", errorCode(t, rec))
}

func TestOverflowingResultsRenderAsErrors(t *testing.T) {
	h := newTestServer(t)

	rec := post(t, h, "/api/v1/describe", map[string]interface{}{"data": []float64{1e308, 1e308}})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "NON_FINITE_RESULT", errorCode(t, rec))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	// the rejected range is infinite, which must not leak into the error body
	rec = post(t, h, "/api/v1/describe", map[string]interface{}{"data": []float64{-1e308, 1e308}, "bins": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "INVALID_PARAMETER", errorCode(t, rec))
}

func TestMalformedRequests(t *testing.T) {
	h := newTestServer(t)

	rec := post(t, h, "/api/v1/describe", `{"data": [1, 2], "colour": "red"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, rec))

	rec = post(t, h, "/api/v1/describe", `{"data": [1, 2`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/api/v1/gof", map[string]interface{}{"data": sample, "distribution": "normal"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"].(map[string]interface{})["details"], "testType")
}

func TestErrorResponseCarriesRequestID(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/describe", strings.NewReader(`{"data": []}`))
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	body := decodeBody(t, rec)
	assert.Equal(t, "req-42", body["request_id"])
	assert.Equal(t, "/api/v1/describe", body["path"])
}

func TestIntervalEndpointsDefaultConfidence(t *testing.T) {
	h := newTestServer(t)

	rec := post(t, h, "/api/v1/intervals/mean", map[string]interface{}{"data": sample})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0.95, decodeBody(t, rec)["confidenceLevel"])

	rec = post(t, h, "/api/v1/intervals/mean", map[string]interface{}{"data": sample, "tailType": "right"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Infinity", decodeBody(t, rec)["upper"])

	rec = post(t, h, "/api/v1/intervals/proportion", map[string]interface{}{
		"successes": 45, "trials": 100, "method": "Wilson",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "Wilson score", body["method"])
	assert.Less(t, body["lower"].(float64), 0.45)
	assert.Greater(t, body["upper"].(float64), 0.45)

	rec = post(t, h, "/api/v1/intervals/two-proportion", map[string]interface{}{
		"successes1": 45, "trials1": 100, "successes2": 30, "trials2": 100,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHypothesisTestEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec := post(t, h, "/api/v1/tests/t", map[string]interface{}{"data": sample, "mu0": 4.5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, 0.05, body["alpha"])
	assert.Equal(t, "two-tailed", body["tailType"])

	rec = post(t, h, "/api/v1/tests/z", map[string]interface{}{
		"mean": 52, "sigma": 4, "n": 16, "mu0": 50, "tailType": "greater",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeBody(t, rec)
	assert.InDelta(t, 2.0, body["statistic"], 1e-12)
	assert.Equal(t, true, body["rejected"])

	rec = post(t, h, "/api/v1/tests/z", map[string]interface{}{"data": sample, "mean": 4, "sigma": 1, "mu0": 4})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPowerAndSampleSizeEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec := post(t, h, "/api/v1/power", map[string]interface{}{
		"test": "z", "mu1": 105, "mu0": 100, "sigma": 15, "n": 50, "includeCurve": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "z", body["test"])
	assert.Len(t, body["curve"], 61)

	rec = post(t, h, "/api/v1/power", map[string]interface{}{"test": "f", "mu1": 1, "sigma": 1, "n": 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, h, "/api/v1/sample-size/margin", map[string]interface{}{"sigma": 15, "margin": 3})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(97), decodeBody(t, rec)["sampleSize"])

	rec = post(t, h, "/api/v1/sample-size/margin", map[string]interface{}{"proportion": 0.5, "margin": 0.05})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(385), decodeBody(t, rec)["sampleSize"])

	rec = post(t, h, "/api/v1/sample-size/power", map[string]interface{}{
		"mu1": 105, "mu0": 100, "sigma": 15, "beta": 0.2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Greater(t, decodeBody(t, rec)["sampleSize"].(float64), float64(0))
}

func TestEstimateEndpoint(t *testing.T) {
	h := newTestServer(t)

	rec := post(t, h, "/api/v1/estimate", map[string]interface{}{"data": sample, "family": "Normal", "method": "MoM"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, "mom", body["method"])
	assert.InDelta(t, 4.7175, body["parameters"].(map[string]interface{})["mean"], 1e-12)
}

func TestGoodnessOfFitEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec := post(t, h, "/api/v1/gof", map[string]interface{}{
		"data":         sample,
		"testType":     "ks",
		"distribution": "normal",
		"parameters":   map[string]float64{"mean": 4.7, "std": 0.5},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.InDelta(t, 0.10542169234808907, body["statistic"], 1e-9)
	assert.Equal(t, false, body["isReject"])

	rec = post(t, h, "/api/v1/gof/suite", map[string]interface{}{"data": sample, "distribution": "normal"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeBody(t, rec)["results"], 4)

	rec = post(t, h, "/api/v1/gof", map[string]interface{}{
		"data": sample, "testType": "anderson-darling", "distribution": "exponential",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UNSUPPORTED_DISTRIBUTION", errorCode(t, rec))
}

func TestGenerateEndpoint(t *testing.T) {
	h := newTestServer(t)

	request := map[string]interface{}{
		"family": "normal", "parameters": map[string]float64{"mean": 0, "std": 1}, "size": 10, "seed": 7,
	}
	first := post(t, h, "/api/v1/generate", request)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := post(t, h, "/api/v1/generate", request)

	assert.Len(t, decodeBody(t, first)["values"], 10)
	assert.Equal(t, decodeBody(t, first)["values"], decodeBody(t, second)["values"])
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)
	post(t, h, "/api/v1/describe", map[string]interface{}{"data": sample})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	text, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), `statlab_http_requests_total{method="POST",route="/api/v1/describe",status="200"} 1`)
	assert.Contains(t, string(text), `statlab_computations_total{operation="describe",status="success"} 1`)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/describe", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
