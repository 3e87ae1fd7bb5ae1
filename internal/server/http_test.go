package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/cryptotrivia/trivia-service/internal/config"
)

func testServer(questionHandler http.HandlerFunc) *http.Server {
	cfg := &config.App{HTTPAddr: "127.0.0.1:0"}
	return NewHTTPServer(cfg, zerolog.New(io.Discard), nil, nil, questionHandler)
}

func TestHealthz(t *testing.T) {
	srv := testServer(nil)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyzWithNoDependencies(t *testing.T) {
	srv := testServer(nil)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true}`, rec.Body.String())
}

func TestMetricsEndpointIsMounted(t *testing.T) {
	srv := testServer(nil)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQuestionRouteIsMounted(t *testing.T) {
	var hit bool
	srv := testServer(func(w http.ResponseWriter, _ *http.Request) {
		hit = true
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/questions", nil))

	assert.True(t, hit)
	assert.Equal(t, http.StatusOK, rec.Code)
}
