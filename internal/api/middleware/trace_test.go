package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	log, buf := logger.NewTestLogger()

	var traceID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/tasks", nil)
	rr := httptest.NewRecorder()
	NewTraceMiddleware(log)(next).ServeHTTP(rr, req)

	require.NotEmpty(t, traceID)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, traceID, rr.Header().Get("X-Trace-ID"))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "inside handler", entries[0]["msg"])
	assert.Equal(t, traceID, entries[0]["trace_id"])

	assert.Equal(t, "request completed", entries[1]["msg"])
	assert.Equal(t, traceID, entries[1]["trace_id"])
	assert.Equal(t, "POST", entries[1]["method"])
	assert.Equal(t, "/tasks", entries[1]["path"])
	assert.EqualValues(t, http.StatusCreated, entries[1]["status"])
}
