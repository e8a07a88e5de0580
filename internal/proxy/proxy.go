// Package proxy forwards a request to a configured upstream, filtering
// hop-by-hop headers and classifying transport failures into the
// UpstreamConnect/UpstreamTimeout kinds the pipeline needs.
package proxy

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/schema-gateway/gateway/internal/gwerrors"
)

// DefaultTimeout is the bounded connect/read timeout applied per upstream
// request when the caller does not configure one. An unbounded request
// would let a hung upstream pin a client connection indefinitely.
const DefaultTimeout = 5 * time.Second

// hopByHopHeaders is the set of headers never forwarded upstream: they
// describe the connection to the gateway itself, not the request payload.
// Host is handled separately since Go exposes it via Request.Host, not the
// Header map.
var hopByHopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// Proxy issues forwarded requests against a shared, process-wide HTTP
// client and connection pool, so concurrent requests reuse upstream
// connections instead of dialing one per call.
type Proxy struct {
	client *http.Client
}

// New creates a Proxy with the given per-request timeout.
func New(timeout time.Duration) *Proxy {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Proxy{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Response is the upstream's reply, ready to be relayed to the client.
// Body must be closed by the caller once its contents have been consumed
// or streamed.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Forward builds the outbound request by concatenating upstreamBase with
// the original request's path and query string (path parameters are not
// re-interpolated: the upstream receives the literal incoming path), copies
// headers minus the hop-by-hop set, applies injected headers last so they
// override any client-supplied value, and issues the call.
func (p *Proxy) Forward(ctx context.Context, method, upstreamBase, path, rawQuery string, header http.Header, body []byte, injected http.Header) (*Response, error) {
	target, err := buildUpstreamURL(upstreamBase, path, rawQuery)
	if err != nil {
		return nil, gwerrors.NewUpstreamConnect(err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, newBodyReader(body))
	if err != nil {
		return nil, gwerrors.NewUpstreamConnect(err.Error())
	}

	copyFilteredHeaders(req.Header, header)
	for key, values := range injected {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}

func newBodyReader(body []byte) io.Reader {
	if len(body) == 0 {
		return nil
	}
	return strings.NewReader(string(body))
}

// buildUpstreamURL concatenates the configured upstream base with the
// request's original path and raw query string.
func buildUpstreamURL(upstreamBase, path, rawQuery string) (string, error) {
	base, err := url.Parse(upstreamBase)
	if err != nil {
		return "", err
	}
	base.Path = joinPath(base.Path, path)
	base.RawQuery = rawQuery
	return base.String(), nil
}

func joinPath(basePath, reqPath string) string {
	if basePath == "" || basePath == "/" {
		return reqPath
	}
	return strings.TrimRight(basePath, "/") + "/" + strings.TrimLeft(reqPath, "/")
}

// copyFilteredHeaders copies every header from src to dst except the
// hop-by-hop set and Host.
func copyFilteredHeaders(dst, src http.Header) {
	for key, values := range src {
		if hopByHopHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		if strings.EqualFold(key, "Host") {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

// classifyTransportError distinguishes a deadline/timeout failure from a
// connection-level failure (refused, DNS, reset), so the pipeline can
// report the two as distinct error kinds.
func classifyTransportError(ctx context.Context, err error) *gwerrors.Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return gwerrors.NewUpstreamTimeout(err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return gwerrors.NewUpstreamTimeout(err.Error())
	}

	return gwerrors.NewUpstreamConnect(err.Error())
}
