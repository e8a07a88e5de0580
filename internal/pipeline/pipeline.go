// Package pipeline orchestrates one request end to end: schema resolution,
// validation, the per-route error policy, upstream forwarding, and
// response-side validation for OpenAPI routes.
package pipeline

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/schema-gateway/gateway/internal/config"
	"github.com/schema-gateway/gateway/internal/gwerrors"
	"github.com/schema-gateway/gateway/internal/logger"
	"github.com/schema-gateway/gateway/internal/openapivalidator"
	"github.com/schema-gateway/gateway/internal/proxy"
	"github.com/schema-gateway/gateway/internal/schemacache"
)

// headerSchemaValidated and headerGatewayError are the gateway-injected
// headers that report the validation outcome on the request forwarded
// upstream; headerGatewayError is also set on a relayed upstream response
// that failed response validation in permissive mode.
const (
	headerSchemaValidated = "X-Schema-Validated"
	headerGatewayError    = "X-Gateway-Error"
)

// Pipeline wires the schema cache and the upstream proxy behind the single
// per-request Handle entry point.
type Pipeline struct {
	cache *schemacache.Cache
	proxy *proxy.Proxy
}

// New builds a Pipeline over a shared schema cache and proxy.
func New(cache *schemacache.Cache, p *proxy.Proxy) *Pipeline {
	return &Pipeline{cache: cache, proxy: p}
}

// Handle runs steps 2-8 of the request pipeline for a request already
// matched to route, with params bound by the route matcher. Route lookup
// itself (step 1, 404/405) is the caller's responsibility (internal/server),
// since it precedes any route-specific state this type needs.
func (p *Pipeline) Handle(w http.ResponseWriter, r *http.Request, route *config.Route, params map[string]string) {
	log := logger.FromRequestContext(r.Context()).WithRoute(route.Method, route.Path)

	body, err := io.ReadAll(r.Body)

	var (
		gwErr         *gwerrors.Error
		validated     bool
		validationTag string
		op            *openapivalidator.Operation
	)
	if err != nil {
		gwErr = gwerrors.NewBodyReadError(err)
	}

	switch {
	case gwErr != nil:
		// The body could not be read; the error policy below decides.

	case route.HasSchema():
		validationTag = "true"
		validator, loadErr := p.cache.LoadJSONSchema(route.Schema)
		if loadErr != nil {
			gwErr = asGatewayError(loadErr)
			break
		}
		if len(body) > 0 {
			var instance any
			if jsonErr := json.Unmarshal(body, &instance); jsonErr != nil {
				gwErr = gwerrors.NewInvalidJSON(jsonErr)
				break
			}
			if failures := validator.Validate(instance); len(failures) > 0 {
				gwErr = gwerrors.NewValidationFailed(failures)
				break
			}
		}
		validated = true

	case route.HasOpenAPI():
		validationTag = "openapi"
		doc, loadErr := p.cache.LoadOpenAPIDocument(route.OpenAPI.Spec)
		if loadErr != nil {
			gwErr = asGatewayError(loadErr)
			break
		}

		var findErr error
		if route.OpenAPI.OperationID != "" {
			op, findErr = doc.FindByOperationID(route.OpenAPI.OperationID)
		} else {
			op, findErr = doc.FindByRoute(route.Method, route.Path)
		}
		if findErr != nil {
			gwErr = asGatewayError(findErr)
			break
		}

		var failures []gwerrors.FieldFailure
		if len(body) > 0 {
			r.Body = io.NopCloser(bytes.NewReader(body))
			failures = op.ValidateRequest(r, params)
		} else {
			failures = op.ValidateParameters(r, params)
		}
		if len(failures) > 0 {
			gwErr = gwerrors.NewValidationFailed(failures)
			break
		}
		validated = true

	default:
		// No validator source configured: skip validation entirely.
	}

	injected := http.Header{}
	if gwErr != nil {
		if !route.Effective.ForwardOnError {
			p.reject(w, log, route, gwErr)
			return
		}
		log.Warn("forwarding request despite validation error",
			"kind", gwErr.Kind,
			"detail", gwErr.Message(),
		)
		if route.Effective.AddErrorHeader {
			injected.Set(headerGatewayError, gwErr.HeaderMessage())
		}
	} else if validated && route.Effective.AddValidationHeader {
		injected.Set(headerSchemaValidated, validationTag)
	}

	resp, fwdErr := p.proxy.Forward(r.Context(), r.Method, route.Upstream, r.URL.Path, r.URL.RawQuery, r.Header, body, injected)
	if fwdErr != nil {
		gwErr := asGatewayError(fwdErr)
		log.Error("upstream request failed", "kind", gwErr.Kind, "detail", gwErr.Message())
		writeJSONError(w, gwErr)
		return
	}
	defer resp.Body.Close()

	p.handleResponse(w, log, route, op, resp)
}

// handleResponse relays the upstream response, applying §4.5 response
// validation when the route is an OpenAPI route with a declared schema for
// the response's status code.
func (p *Pipeline) handleResponse(w http.ResponseWriter, log *logger.Logger, route *config.Route, op *openapivalidator.Operation, resp *proxy.Response) {
	if op == nil || !op.HasResponseSchema(resp.StatusCode, resp.Header.Get("Content-Type")) {
		relay(w, resp.StatusCode, resp.Header, resp.Body)
		return
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		writeJSONError(w, gwerrors.NewBodyReadError(err))
		return
	}

	if valErr := op.ValidateResponse(resp.StatusCode, resp.Header, respBody); valErr != nil {
		gwErr := asGatewayError(valErr)
		if !route.Effective.ForwardOnError {
			log.Error("response validation failed, rejecting", "detail", gwErr.Message())
			writeJSONError(w, gwErr)
			return
		}
		log.Warn("relaying response despite validation failure", "detail", gwErr.Message())
		resp.Header.Set(headerGatewayError, gwErr.HeaderMessage())
		relay(w, resp.StatusCode, resp.Header, io.NopCloser(bytes.NewReader(respBody)))
		return
	}

	relay(w, resp.StatusCode, resp.Header, io.NopCloser(bytes.NewReader(respBody)))
}

// reject synthesizes a local error response without contacting the
// upstream. Used in strict mode, where a validation failure must never
// reach the upstream at all.
func (p *Pipeline) reject(w http.ResponseWriter, log *logger.Logger, route *config.Route, err *gwerrors.Error) {
	log.Info("rejected request", "kind", err.Kind, "detail", err.Message())
	writeJSONError(w, err)
}

func writeJSONError(w http.ResponseWriter, err *gwerrors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode())
	_ = json.NewEncoder(w).Encode(err.ResponseBody())
}

var hopByHopResponseHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

// relay streams status, filtered headers, and body to the client verbatim.
func relay(w http.ResponseWriter, statusCode int, header http.Header, body io.ReadCloser) {
	dst := w.Header()
	for key, values := range header {
		if hopByHopResponseHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
	w.WriteHeader(statusCode)
	_, _ = io.Copy(w, body)
}

func asGatewayError(err error) *gwerrors.Error {
	if gwErr, ok := err.(*gwerrors.Error); ok {
		return gwErr
	}
	return gwerrors.FromError(err)
}
