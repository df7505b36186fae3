package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"routecast/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	var seenID string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = types.GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seenID)
	assert.Equal(t, seenID, rr.Header().Get("X-Request-Id"))
}

func TestRequestID_ReusesInboundHeader(t *testing.T) {
	var seenID string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = types.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "caller-supplied")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "caller-supplied", seenID)
	assert.Equal(t, "caller-supplied", rr.Header().Get("X-Request-Id"))
}

func TestRequestLogger_StoresScopedLoggerInContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	chain := RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		types.GetLogger(r.Context()).Info("inside handler")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-42")
	chain.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, "inside handler")
	assert.Contains(t, out, "request_id=req-42", "the scoped logger carries the request ID")
}

func TestRecoverer_ConvertsPanicTo500(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "boom", "panic detail never reaches the client")
}

func TestResponseCapture_RecordsStatus(t *testing.T) {
	rc := &responseCapture{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	rc.WriteHeader(http.StatusTeapot)
	rc.WriteHeader(http.StatusOK)

	assert.Equal(t, http.StatusTeapot, rc.statusCode, "only the first status sticks")
}

func TestResponseCapture_ImplicitOKOnWrite(t *testing.T) {
	rc := &responseCapture{ResponseWriter: httptest.NewRecorder()}
	_, err := rc.Write([]byte("body"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rc.statusCode)
}
