// Package openapivalidator adapts an OpenAPI 3.x document into per-operation
// request, parameter, and response validators. It loads a document once,
// builds an operation index keyed by operationId and by (method, templated
// path), and exposes per-operation validation backed by
// github.com/getkin/kin-openapi.
package openapivalidator

import (
	"context"
	"os"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"

	"github.com/schema-gateway/gateway/internal/gwerrors"
)

// Document is the compiled, immutable form of one OpenAPI document: the
// parsed spec plus its operation index. Safe for concurrent use.
type Document struct {
	spec *openapi3.T

	byOperationID    map[string]*Operation
	byMethodTemplate map[string]*Operation
}

// Load parses path as an OpenAPI 3.x document (YAML or JSON), validates its
// structure, and builds the operation index.
func Load(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, gwerrors.NewOpenAPINotFound(path)
	}

	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, gwerrors.NewInvalidOpenAPI(err.Error())
	}

	if err := spec.Validate(context.Background()); err != nil {
		return nil, gwerrors.NewInvalidOpenAPI(err.Error())
	}

	doc := &Document{
		spec:             spec,
		byOperationID:    make(map[string]*Operation),
		byMethodTemplate: make(map[string]*Operation),
	}
	doc.index()

	return doc, nil
}

// index walks every path/method in the document and records each operation
// under both the operationId key and the (method, template) key.
func (d *Document) index() {
	if d.spec.Paths == nil {
		return
	}
	for template, pathItem := range d.spec.Paths.Map() {
		for method, op := range pathItem.Operations() {
			operation := &Operation{
				doc:      d,
				method:   strings.ToUpper(method),
				template: template,
				pathItem: pathItem,
				spec:     op,
			}

			key := normalizedTemplateKey(operation.method, template)
			d.byMethodTemplate[key] = operation

			if op.OperationID != "" {
				d.byOperationID[op.OperationID] = operation
			}
		}
	}
}

// FindByOperationID returns the operation registered under operationID.
func (d *Document) FindByOperationID(operationID string) (*Operation, error) {
	op, ok := d.byOperationID[operationID]
	if !ok {
		return nil, gwerrors.NewOperationNotFoundByID(operationID)
	}
	return op, nil
}

// FindByRoute returns the operation matching method and a gateway route
// template using ":name" segments (converted internally to the OpenAPI
// "{name}" form before lookup).
func (d *Document) FindByRoute(method, gatewayTemplate string) (*Operation, error) {
	key := normalizedTemplateKey(strings.ToUpper(method), colonToBraces(gatewayTemplate))
	op, ok := d.byMethodTemplate[key]
	if !ok {
		return nil, gwerrors.NewOperationNotFoundByRoute(method, gatewayTemplate)
	}
	return op, nil
}

// Operation is one (method, templated path) operation within a loaded
// document, with its request, parameter, and response validators.
type Operation struct {
	doc      *Document
	method   string
	template string
	pathItem *openapi3.PathItem
	spec     *openapi3.Operation
}

// route builds the kin-openapi router.Route value openapi3filter needs to
// validate a request or response against this specific operation.
func (o *Operation) route() *routers.Route {
	return &routers.Route{
		Spec:      o.doc.spec,
		Path:      o.template,
		PathItem:  o.pathItem,
		Method:    o.method,
		Operation: o.spec,
	}
}

// normalizedTemplateKey builds a lookup key that is agnostic to whether
// path parameters are written ":name" or "{name}" — both forms collapse
// to the same normalized segment list.
func normalizedTemplateKey(method, template string) string {
	segs := strings.Split(strings.Trim(template, "/"), "/")
	for i, seg := range segs {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			segs[i] = ":" + seg[1:len(seg)-1]
		}
	}
	return method + " " + strings.Join(segs, "/")
}

// colonToBraces converts a gateway-style ":name" path template segment
// into "{name}", matching normalizedTemplateKey's canonical form either way
// (kept for readability at call sites).
func colonToBraces(template string) string {
	segs := strings.Split(template, "/")
	for i, seg := range segs {
		if strings.HasPrefix(seg, ":") {
			segs[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segs, "/")
}
