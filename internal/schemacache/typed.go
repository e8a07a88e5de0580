package schemacache

import (
	"os"

	"github.com/schema-gateway/gateway/internal/gwerrors"
	gwjsonschema "github.com/schema-gateway/gateway/internal/jsonschema"
	"github.com/schema-gateway/gateway/internal/openapivalidator"
)

// LoadJSONSchema returns the compiled JSON Schema validator for path,
// reading and compiling it at most once across the cache's lifetime.
func (c *Cache) LoadJSONSchema(path string) (*gwjsonschema.Validator, error) {
	v, err := c.Load(path, func(canonicalPath string) (any, error) {
		raw, err := os.ReadFile(canonicalPath)
		if err != nil {
			return nil, gwerrors.NewSchemaNotFound(path)
		}
		return gwjsonschema.Compile(canonicalPath, raw)
	})
	if err != nil {
		return nil, err
	}
	return v.(*gwjsonschema.Validator), nil
}

// LoadOpenAPIDocument returns the compiled OpenAPI operation index for
// path, loading and validating the document at most once.
func (c *Cache) LoadOpenAPIDocument(path string) (*openapivalidator.Document, error) {
	v, err := c.Load(path, func(canonicalPath string) (any, error) {
		return openapivalidator.Load(canonicalPath)
	})
	if err != nil {
		return nil, err
	}
	return v.(*openapivalidator.Document), nil
}
