package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testRequest describes one request routed through a chi pattern so that
// path parameters resolve the way they do in the server.
type testRequest struct {
	method  string
	pattern string
	path    string
	body    interface{}
	userID  uuid.UUID
}

func serve(t *testing.T, tr testRequest, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch b := tr.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(tr.method, tr.path, body)
	req.Header.Set("Content-Type", "application/json")
	if tr.userID != uuid.Nil {
		req = req.WithContext(shared.WithUserID(req.Context(), tr.userID))
	}

	router := chi.NewRouter()
	router.MethodFunc(tr.method, tr.pattern, h)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
