package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/schema-gateway/gateway/internal/config"
	"github.com/schema-gateway/gateway/internal/logger"
	"github.com/schema-gateway/gateway/internal/pipeline"
	"github.com/schema-gateway/gateway/internal/proxy"
	"github.com/schema-gateway/gateway/internal/schemacache"
)

func newTestServer(table *config.RouteTable) *Server {
	p := pipeline.New(schemacache.New(), proxy.New(time.Second))
	log := logger.New(logger.Config{Level: "error", JSON: true})
	return New(table, p, log)
}

func TestDispatchNotFound(t *testing.T) {
	table := &config.RouteTable{Routes: []config.Route{
		{Path: "/api/users", Method: "POST", Upstream: "http://example.invalid"},
	}}
	s := newTestServer(table)

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	rec := httptest.NewRecorder()
	s.Engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDispatchMethodNotAllowed(t *testing.T) {
	table := &config.RouteTable{Routes: []config.Route{
		{Path: "/api/users", Method: "POST", Upstream: "http://example.invalid"},
	}}
	s := newTestServer(table)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	s.Engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDispatchMatchedForwardsToUpstream(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer upstream.Close()

	table := &config.RouteTable{Routes: []config.Route{
		{
			Path: "/api/users", Method: "POST", Upstream: upstream.URL,
			Effective: config.EffectivePolicy{ForwardOnError: true, AddErrorHeader: true, AddValidationHeader: true},
		},
	}}
	s := newTestServer(table)

	req := httptest.NewRequest(http.MethodPost, "/api/users", nil)
	rec := httptest.NewRecorder()
	s.Engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestDispatchTrailingSlashTolerated(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstream.Close()

	table := &config.RouteTable{Routes: []config.Route{
		{Path: "/a/b", Method: "GET", Upstream: upstream.URL},
	}}
	s := newTestServer(table)

	req := httptest.NewRequest(http.MethodGet, "/a/b/", nil)
	rec := httptest.NewRecorder()
	s.Engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
