package proxy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schema-gateway/gateway/internal/gwerrors"
)

func TestForwardRelaysMethodPathQueryAndBody(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	p := New(time.Second)
	resp, err := p.Forward(context.Background(), http.MethodPost, upstream.URL, "/widgets", "color=red", http.Header{"Content-Type": {"application/json"}}, []byte(`{"name":"a"}`), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/widgets", gotPath)
	assert.Equal(t, "color=red", gotQuery)
	assert.Equal(t, `{"name":"a"}`, gotBody)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "yes", resp.Header.Get("X-Upstream"))

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, `{"ok":true}`, string(body))
}

func TestForwardStripsHopByHopHeaders(t *testing.T) {
	var gotConnection, gotKeepAlive string
	var hadConnection bool
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotConnection = r.Header.Get("Connection")
		gotKeepAlive = r.Header.Get("Keep-Alive")
		_, hadConnection = r.Header["Connection"]
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	p := New(time.Second)
	header := http.Header{
		"Connection": {"keep-alive"},
		"Keep-Alive": {"timeout=5"},
		"X-Request":  {"id-123"},
	}
	resp, err := p.Forward(context.Background(), http.MethodGet, upstream.URL, "/ping", "", header, nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Empty(t, gotConnection)
	assert.Empty(t, gotKeepAlive)
	assert.False(t, hadConnection)
}

func TestForwardInjectedHeadersOverrideClientHeaders(t *testing.T) {
	var gotRequestID string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	p := New(time.Second)
	clientHeader := http.Header{"X-Request-Id": {"client-value"}}
	injected := http.Header{"X-Request-Id": {"gateway-value"}}
	resp, err := p.Forward(context.Background(), http.MethodGet, upstream.URL, "/x", "", clientHeader, nil, injected)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "gateway-value", gotRequestID)
}

func TestForwardConnectionRefusedIsUpstreamConnect(t *testing.T) {
	p := New(time.Second)
	_, err := p.Forward(context.Background(), http.MethodGet, "http://127.0.0.1:1", "/x", "", nil, nil, nil)
	require.Error(t, err)

	gwErr, ok := err.(*gwerrors.Error)
	require.True(t, ok)
	assert.Equal(t, gwerrors.UpstreamConnect, gwErr.Kind)
}

func TestForwardDeadlineExceededIsUpstreamTimeout(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	p := New(5 * time.Millisecond)
	_, err := p.Forward(context.Background(), http.MethodGet, upstream.URL, "/slow", "", nil, nil, nil)
	require.Error(t, err)

	gwErr, ok := err.(*gwerrors.Error)
	require.True(t, ok)
	assert.Equal(t, gwerrors.UpstreamTimeout, gwErr.Kind)
}

func TestBuildUpstreamURLJoinsBasePath(t *testing.T) {
	url, err := buildUpstreamURL("http://internal.svc:8080/api", "/v1/users", "a=1")
	require.NoError(t, err)
	assert.Equal(t, "http://internal.svc:8080/api/v1/users?a=1", url)
}
