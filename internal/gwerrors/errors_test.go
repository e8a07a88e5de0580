package gwerrors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageTemplates(t *testing.T) {
	assert.Equal(t, "Schema not found: ./schemas/x.json", NewSchemaNotFound("./schemas/x.json").Message())
	assert.Equal(t, "OpenAPI spec not found: ./api.yaml", NewOpenAPINotFound("./api.yaml").Message())
	assert.Equal(t, "OpenAPI operation not found: POST /api/users", NewOperationNotFoundByRoute("POST", "/api/users").Message())
}

func TestValidationFailedMessage(t *testing.T) {
	err := NewValidationFailed([]FieldFailure{
		{Path: "/", Message: "'email' is a required property"},
	})
	assert.Equal(t, "Validation failed: /: 'email' is a required property", err.Message())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode())
}

func TestValidationFailedHeaderMessageIsBounded(t *testing.T) {
	failures := []FieldFailure{
		{Path: "/a", Message: "m1"},
		{Path: "/b", Message: "m2"},
		{Path: "/c", Message: "m3"},
		{Path: "/d", Message: "m4"},
	}
	err := NewValidationFailed(failures)
	header := err.HeaderMessage()
	assert.Contains(t, header, "/a: m1")
	assert.Contains(t, header, "/c: m3")
	assert.NotContains(t, header, "/d: m4")
}

func TestHeaderMessageStripsControlCharsAndNewlines(t *testing.T) {
	err := NewInvalidSchemaSyntax(assertErr("bad\nschema\x00here"))
	header := err.HeaderMessage()
	assert.NotContains(t, header, "\n")
	assert.NotContains(t, header, "\x00")
}

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    *Error
		status int
	}{
		{NewSchemaNotFound("x"), http.StatusInternalServerError},
		{NewInvalidJSON(assertErr("bad")), http.StatusBadRequest},
		{NewValidationFailed(nil), http.StatusBadRequest},
		{NewResponseValidationFailed("x"), http.StatusBadGateway},
		{NewUpstreamConnect("refused"), http.StatusBadGateway},
		{NewUpstreamTimeout("deadline"), http.StatusGatewayTimeout},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), string(tc.err.Kind))
	}
}

func TestResponseBody(t *testing.T) {
	body := NewSchemaNotFound("./nonexistent.json").ResponseBody()
	assert.Equal(t, "Schema not found: ./nonexistent.json", body.Error)
}

type simpleErr string

func (e simpleErr) Error() string { return string(e) }

func assertErr(s string) error { return simpleErr(s) }
