package openapivalidator

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"

	"github.com/schema-gateway/gateway/internal/gwerrors"
)

// ValidateRequest validates path parameters, query/header/cookie
// parameters, and (for JSON content types) the request body against this
// operation. pathParams are the :name bindings captured by the gateway's
// own route matcher.
func (o *Operation) ValidateRequest(req *http.Request, pathParams map[string]string) []gwerrors.FieldFailure {
	input := &openapi3filter.RequestValidationInput{
		Request:    req,
		PathParams: pathParams,
		Route:      o.route(),
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}

	if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
		return requestErrorToFailures(err)
	}
	return nil
}

// ValidateParameters validates only the declared path/query/header/cookie
// parameters, leaving the body untouched. Used when the incoming body is
// empty: enforcing requestBody.required is left to the upstream, but
// parameter validation must still run regardless of body presence.
func (o *Operation) ValidateParameters(req *http.Request, pathParams map[string]string) []gwerrors.FieldFailure {
	var out []gwerrors.FieldFailure
	for _, paramRef := range o.spec.Parameters {
		param := paramRef.Value
		if param == nil {
			continue
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      o.route(),
		}
		if err := openapi3filter.ValidateParameter(req.Context(), input, param); err != nil {
			out = append(out, gwerrors.FieldFailure{Path: "/" + param.Name, Message: describeParamError(err)})
		}
	}
	return out
}

func describeParamError(err error) string {
	if paramErr, ok := err.(*openapi3filter.ParseError); ok {
		return paramErr.Reason
	}
	return err.Error()
}

// HasResponseSchema reports whether this operation declares a JSON schema
// for statusCode, so the pipeline can skip response validation entirely
// when nothing is declared: an undeclared response is passed through
// unvalidated rather than rejected.
func (o *Operation) HasResponseSchema(statusCode int, contentType string) bool {
	return o.responseMediaType(statusCode, contentType) != nil
}

// ValidateResponse validates body against the declared JSON response
// schema for statusCode, if any.
func (o *Operation) ValidateResponse(statusCode int, header http.Header, body []byte) error {
	input := &openapi3filter.RequestValidationInput{
		Route: o.route(),
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	respInput := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: input,
		Status:                 statusCode,
		Header:                 header,
		Body:                   io.NopCloser(bytes.NewReader(body)),
		Options: &openapi3filter.Options{
			IncludeResponseStatus: true,
		},
	}

	if err := openapi3filter.ValidateResponse(context.Background(), respInput); err != nil {
		return gwerrors.NewResponseValidationFailed(describeResponseError(err))
	}
	return nil
}

func (o *Operation) responseMediaType(statusCode int, contentType string) *openapi3.MediaType {
	if o.spec.Responses == nil {
		return nil
	}
	resp := o.spec.Responses.Status(statusCode)
	if resp == nil {
		resp = o.spec.Responses.Default()
	}
	if resp == nil || resp.Value == nil || resp.Value.Content == nil {
		return nil
	}
	mediaType := baseMediaType(contentType)
	if mt, ok := resp.Value.Content[mediaType]; ok {
		return mt
	}
	return nil
}

func baseMediaType(contentType string) string {
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = contentType[:idx]
	}
	if contentType == "" {
		return "application/json"
	}
	return strings.TrimSpace(contentType)
}

// requestErrorToFailures converts kin-openapi's request validation error
// (which reports only the first violation it encounters) into the
// gateway's ordered field-failure shape. When the underlying cause is a
// schema error, its origin chain is flattened so nested causes are not
// lost, surfacing as much of kin-openapi's own error detail as it exposes.
func requestErrorToFailures(err error) []gwerrors.FieldFailure {
	reqErr, ok := err.(*openapi3filter.RequestError)
	if !ok {
		return []gwerrors.FieldFailure{{Path: "/", Message: err.Error()}}
	}

	if schemaErr, ok := reqErr.Err.(*openapi3.SchemaError); ok {
		return schemaErrorChain(schemaErr)
	}

	path := "/"
	if reqErr.Parameter != nil {
		path = "/" + reqErr.Parameter.Name
	} else if reqErr.RequestBody != nil {
		path = "/"
	}
	return []gwerrors.FieldFailure{{Path: path, Message: reqErr.Reason}}
}

func schemaErrorChain(root *openapi3.SchemaError) []gwerrors.FieldFailure {
	var out []gwerrors.FieldFailure
	cur := root
	for cur != nil {
		pointer := "/"
		if segs := cur.JSONPointer(); len(segs) > 0 {
			pointer = "/" + strings.Join(segs, "/")
		}
		out = append(out, gwerrors.FieldFailure{Path: pointer, Message: cur.Reason})

		next, ok := cur.Origin.(*openapi3.SchemaError)
		if !ok {
			break
		}
		cur = next
	}
	return out
}

func describeResponseError(err error) string {
	if respErr, ok := err.(*openapi3filter.ResponseError); ok {
		if schemaErr, ok := respErr.Err.(*openapi3.SchemaError); ok {
			pointer := "/"
			if segs := schemaErr.JSONPointer(); len(segs) > 0 {
				pointer = "/" + strings.Join(segs, "/")
			}
			return pointer + ": " + schemaErr.Reason
		}
		return respErr.Reason
	}
	return err.Error()
}
