package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadValidRouteTable(t *testing.T) {
	yamlDoc := []byte(`
global:
  forward_on_error: false
routes:
  - path: "/api/users/:id"
    method: post
    upstream: "http://backend.local"
    schema: "./schemas/user.json"
    config:
      forward_on_error: true
`)
	rt, err := Load(yamlDoc)
	require.NoError(t, err)
	require.Len(t, rt.Routes, 1)

	r := rt.Routes[0]
	assert.Equal(t, "POST", r.Method)
	assert.True(t, r.Effective.ForwardOnError) // override wins over global
	assert.True(t, r.Effective.AddErrorHeader) // unspecified -> default true
}

func TestLoadOpenAPIShorthand(t *testing.T) {
	yamlDoc := []byte(`
routes:
  - path: "/api/users"
    method: GET
    upstream: "http://backend.local"
    openapi: "./openapi.yaml"
`)
	rt, err := Load(yamlDoc)
	require.NoError(t, err)
	require.True(t, rt.Routes[0].HasOpenAPI())
	assert.Equal(t, "./openapi.yaml", rt.Routes[0].OpenAPI.Spec)
	assert.Empty(t, rt.Routes[0].OpenAPI.OperationID)
}

func TestLoadOpenAPIStructured(t *testing.T) {
	yamlDoc := []byte(`
routes:
  - path: "/api/users"
    method: GET
    upstream: "http://backend.local"
    openapi:
      spec: "./openapi.yaml"
      operation_id: listUsers
`)
	rt, err := Load(yamlDoc)
	require.NoError(t, err)
	assert.Equal(t, "listUsers", rt.Routes[0].OpenAPI.OperationID)
}

func TestRejectsEmptyRoutes(t *testing.T) {
	_, err := Load([]byte(`routes: []`))
	assert.Error(t, err)
}

func TestRejectsMissingRoutes(t *testing.T) {
	_, err := Load([]byte(`global:
  forward_on_error: true`))
	assert.Error(t, err)
}

func TestRejectsBadMethod(t *testing.T) {
	_, err := Load([]byte(`
routes:
  - path: "/x"
    method: TRACE
    upstream: "http://backend.local"
`))
	assert.Error(t, err)
}

func TestRejectsEmptyUpstream(t *testing.T) {
	_, err := Load([]byte(`
routes:
  - path: "/x"
    method: GET
    upstream: ""
`))
	assert.Error(t, err)
}

func TestRejectsBothSchemaAndOpenAPI(t *testing.T) {
	_, err := Load([]byte(`
routes:
  - path: "/x"
    method: GET
    upstream: "http://backend.local"
    schema: "./a.json"
    openapi: "./b.yaml"
`))
	assert.Error(t, err)
}

func TestRejectsUnrecognizedTopLevelKey(t *testing.T) {
	_, err := Load([]byte(`
routes:
  - path: "/x"
    method: GET
    upstream: "http://backend.local"
bogus: true
`))
	assert.Error(t, err)
}

func TestMergeDefaultsAllTrue(t *testing.T) {
	eff := Merge(&Policy{}, nil)
	assert.True(t, eff.ForwardOnError)
	assert.True(t, eff.AddErrorHeader)
	assert.True(t, eff.AddValidationHeader)
}

func TestMergeFieldWiseOverride(t *testing.T) {
	no := false
	base := &Policy{ForwardOnError: &no}
	yes := true
	override := &Policy{AddErrorHeader: &yes}
	eff := Merge(base, override)
	assert.False(t, eff.ForwardOnError)   // from base
	assert.True(t, eff.AddErrorHeader)    // from override
	assert.True(t, eff.AddValidationHeader) // default
}
