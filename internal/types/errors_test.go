package types

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_WrapsAndUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAppError(ErrCodeUpstreamPrimary, "fetching forecast", cause)

	assert.Equal(t, "upstream_primary_unavailable: fetching forecast", err.Error())
	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, error(err), &appErr)
	assert.Equal(t, ErrCodeUpstreamPrimary, appErr.Code)
}

func TestAppError_WithDetailsCopies(t *testing.T) {
	base := NewAppError(ErrCodeStoreWrite, "write failed", nil).
		WithDetails(map[string]any{"path": "/tmp/a"})
	derived := base.WithDetails(map[string]any{"attempt": 2})

	assert.Equal(t, "/tmp/a", derived.Details["path"])
	assert.Equal(t, 2, derived.Details["attempt"])
	assert.NotContains(t, base.Details, "attempt", "the original error is untouched")
}

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationInvalidReportType, http.StatusBadRequest},
		{ErrCodeValidationInvalidDate, http.StatusBadRequest},
		{ErrCodeRouteBeforeStart, http.StatusBadRequest},
		{ErrCodeRouteStageNotFound, http.StatusNotFound},
		{ErrCodeUpstreamRateLimited, http.StatusTooManyRequests},
		{ErrCodeUpstreamPrimary, http.StatusBadGateway},
		{ErrCodeUpstreamMalformed, http.StatusBadGateway},
		{ErrCodeStoreWrite, http.StatusInternalServerError},
		{ErrCodeConfigMissingThreshold, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		err := NewAppError(tc.code, "x", nil)
		assert.Equal(t, tc.want, err.HTTPStatus(), string(tc.code))
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithRequestID(ctx, "req-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))
}

func TestLoggerContext(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, GetLogger(ctx), "falls back to the default logger")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx = WithLogger(ctx, logger)
	assert.Same(t, logger, GetLogger(ctx))
}
