package logging

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(buf *bytes.Buffer) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(buf, nil))}
}

func TestRequestLogger_StartAndCompletion(t *testing.T) {
	var buf bytes.Buffer

	handler := RequestLogger(captureLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The context carries the request-scoped logger
		_, ok := r.Context().Value(LoggerContextKey).(*Logger)
		assert.True(t, ok)
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/todos", nil))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "request started")
	assert.Contains(t, lines[1], "request completed")
	assert.Contains(t, lines[1], "status=418")
	assert.Contains(t, out, "path=/todos")
}

func TestGetLoggerFromContext_Fallback(t *testing.T) {
	logger := GetLoggerFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.NotNil(t, logger)
}
