// Package gwerrors defines the gateway's fixed error taxonomy: the kinds of
// failure the request pipeline can produce, how they render on the wire,
// and which HTTP status each maps to in strict mode.
package gwerrors

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind enumerates the gateway's error taxonomy.
type Kind string

const (
	SchemaNotFound           Kind = "schema_not_found"
	InvalidSchemaJSON        Kind = "invalid_schema_json"
	InvalidSchemaSyntax      Kind = "invalid_schema_syntax"
	OpenAPINotFound          Kind = "openapi_not_found"
	InvalidOpenAPI           Kind = "invalid_openapi"
	OperationNotFound        Kind = "operation_not_found"
	BodyReadError            Kind = "body_read_error"
	InvalidJSON              Kind = "invalid_json"
	ValidationFailed         Kind = "validation_failed"
	ResponseValidationFailed Kind = "response_validation_failed"
	UpstreamConnect          Kind = "upstream_connect"
	UpstreamTimeout          Kind = "upstream_timeout"
)

// statusByKind is the strict-mode HTTP status for each kind (§4.2).
var statusByKind = map[Kind]int{
	SchemaNotFound:           http.StatusInternalServerError,
	InvalidSchemaJSON:        http.StatusInternalServerError,
	InvalidSchemaSyntax:      http.StatusInternalServerError,
	OpenAPINotFound:          http.StatusInternalServerError,
	InvalidOpenAPI:           http.StatusInternalServerError,
	OperationNotFound:        http.StatusInternalServerError,
	BodyReadError:            http.StatusInternalServerError,
	InvalidJSON:              http.StatusBadRequest,
	ValidationFailed:         http.StatusBadRequest,
	ResponseValidationFailed: http.StatusBadGateway,
	UpstreamConnect:          http.StatusBadGateway,
	UpstreamTimeout:          http.StatusGatewayTimeout,
}

// FieldFailure is a single schema validation failure: a JSON-pointer-style
// field path and a short human message.
type FieldFailure struct {
	Path    string
	Message string
}

// Error is the gateway's single error type. Exactly one of Detail or
// Failures carries the specifics of what went wrong, depending on Kind.
type Error struct {
	Kind     Kind
	Detail   string         // free-form detail (path, parse error, etc.)
	Failures []FieldFailure // only populated for ValidationFailed
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message()
}

// StatusCode returns the strict-mode HTTP status for this error's kind.
func (e *Error) StatusCode() int {
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Message renders the full, untruncated message for this error, using the
// per-Kind template appropriate to it.
func (e *Error) Message() string {
	switch e.Kind {
	case SchemaNotFound:
		return fmt.Sprintf("Schema not found: %s", e.Detail)
	case InvalidSchemaJSON:
		return fmt.Sprintf("Invalid schema JSON in %s", e.Detail)
	case InvalidSchemaSyntax:
		return fmt.Sprintf("Invalid schema: %s", e.Detail)
	case OpenAPINotFound:
		return fmt.Sprintf("OpenAPI spec not found: %s", e.Detail)
	case InvalidOpenAPI:
		return fmt.Sprintf("Invalid OpenAPI: %s", e.Detail)
	case OperationNotFound:
		return fmt.Sprintf("OpenAPI operation not found: %s", e.Detail)
	case BodyReadError:
		return fmt.Sprintf("Failed to read body: %s", e.Detail)
	case InvalidJSON:
		return fmt.Sprintf("Invalid JSON: %s", e.Detail)
	case ValidationFailed:
		return fmt.Sprintf("Validation failed: %s", e.joinFailures(len(e.Failures)))
	case ResponseValidationFailed:
		return fmt.Sprintf("Response validation failed: %s", e.Detail)
	case UpstreamConnect:
		return "Bad gateway: upstream connection failed"
	case UpstreamTimeout:
		return "Gateway timeout: upstream did not respond in time"
	default:
		return fmt.Sprintf("Unknown error (%s): %s", e.Kind, e.Detail)
	}
}

// HeaderMessage renders a bounded message suitable for an HTTP header value:
// ASCII-only, single line, control characters stripped, and (for
// ValidationFailed) limited to the first few failures to keep header size
// bounded.
func (e *Error) HeaderMessage() string {
	var msg string
	if e.Kind == ValidationFailed {
		msg = fmt.Sprintf("Validation failed: %s", e.joinFailures(headerFailureLimit))
	} else {
		msg = e.Message()
	}
	return sanitizeHeaderValue(msg)
}

// headerFailureLimit bounds how many field failures are joined into the
// header-safe rendering of a ValidationFailed error.
const headerFailureLimit = 3

func (e *Error) joinFailures(limit int) string {
	if len(e.Failures) == 0 {
		return e.Detail
	}
	n := len(e.Failures)
	if limit > 0 && limit < n {
		n = limit
	}
	parts := make([]string, 0, n)
	for _, f := range e.Failures[:n] {
		path := f.Path
		if path == "" {
			path = "/"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", path, f.Message))
	}
	return strings.Join(parts, "; ")
}

// sanitizeHeaderValue strips control characters and non-ASCII bytes and
// collapses the result to a single line, so the value is always legal to
// place in an HTTP header.
func sanitizeHeaderValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteByte(' ')
			continue
		}
		if r < 0x20 || r > 0x7e {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Body is the JSON shape of a synthesized error response (§4.2, §6).
type Body struct {
	Error string `json:"error"`
}

// ResponseBody renders the JSON error body for this error.
func (e *Error) ResponseBody() Body {
	return Body{Error: e.Message()}
}
