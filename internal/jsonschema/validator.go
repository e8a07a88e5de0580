// Package jsonschema wraps github.com/santhosh-tekuri/jsonschema/v5 to
// compile and apply Draft 2020-12 JSON Schema documents, surfacing an
// ordered list of field-level failures rather than a single opaque error.
package jsonschema

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/schema-gateway/gateway/internal/gwerrors"
)

// Validator applies a compiled Draft 2020-12 schema to decoded JSON values.
// It is immutable after Compile and safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// Compile parses raw as JSON and compiles it as a Draft 2020-12 JSON
// Schema document. sourceName identifies the document in compiler errors
// (normally the canonicalized filesystem path).
func Compile(sourceName string, raw []byte) (*Validator, error) {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, gwerrors.NewInvalidSchemaJSON(sourceName, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(sourceName, bytes.NewReader(raw)); err != nil {
		return nil, gwerrors.NewInvalidSchemaSyntax(err)
	}

	schema, err := compiler.Compile(sourceName)
	if err != nil {
		return nil, gwerrors.NewInvalidSchemaSyntax(err)
	}

	return &Validator{schema: schema}, nil
}

// Validate applies the schema to a decoded JSON value (the result of
// json.Unmarshal into `any`). On success it returns a nil failure list. On
// failure it returns every violation found during traversal, ordered by
// first occurrence, each as a gwerrors.FieldFailure.
func (v *Validator) Validate(instance any) []gwerrors.FieldFailure {
	err := v.schema.Validate(instance)
	if err == nil {
		return nil
	}

	valErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []gwerrors.FieldFailure{{Path: "/", Message: err.Error()}}
	}

	failures := flatten(valErr)
	sort.SliceStable(failures, func(i, j int) bool {
		return failures[i].order < failures[j].order
	})

	out := make([]gwerrors.FieldFailure, len(failures))
	for i, f := range failures {
		out[i] = f.FieldFailure
	}
	return out
}

// orderedFailure carries a traversal-order hint alongside the rendered
// failure so the final list can be sorted by first occurrence.
type orderedFailure struct {
	gwerrors.FieldFailure
	order int
}

// flatten walks a jsonschema.ValidationError tree (a root error plus nested
// Causes) and collects one orderedFailure per leaf, in depth-first,
// left-to-right order — which matches first-occurrence-during-traversal for
// this library's error tree shape.
func flatten(root *jsonschema.ValidationError) []orderedFailure {
	var out []orderedFailure
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, orderedFailure{
				FieldFailure: gwerrors.FieldFailure{
					Path:    instanceLocationToPointer(e.InstanceLocation),
					Message: leafMessage(e),
				},
				order: len(out),
			})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(root)
	return out
}

// instanceLocationToPointer normalizes the library's instance location
// (a slash-joined segment list, empty at the root) to a JSON-pointer:
// "/" for root-level errors, "/a/b" otherwise.
func instanceLocationToPointer(loc string) string {
	if loc == "" || loc == "/" {
		return "/"
	}
	if loc[0] != '/' {
		return "/" + loc
	}
	return loc
}

// leafMessage renders a short, keyword-mentioning message for a leaf
// validation error, e.g. "required: missing properties: 'email'".
// KeywordLocation is a JSON-pointer-like path through the schema (e.g.
// "/required" or "/properties/email/type"); its last segment names the
// keyword that was violated.
func leafMessage(e *jsonschema.ValidationError) string {
	keyword := lastSegment(e.KeywordLocation)
	if keyword == "" {
		return e.Message
	}
	return keyword + ": " + e.Message
}

func lastSegment(keywordLocation string) string {
	trimmed := strings.TrimRight(keywordLocation, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}
