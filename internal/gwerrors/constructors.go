package gwerrors

// NewSchemaNotFound builds a SchemaNotFound error for the given path.
func NewSchemaNotFound(path string) *Error {
	return &Error{Kind: SchemaNotFound, Detail: path}
}

// NewInvalidSchemaJSON builds an InvalidSchemaJSON error.
func NewInvalidSchemaJSON(path string, parseErr error) *Error {
	return &Error{Kind: InvalidSchemaJSON, Detail: path + ": " + parseErr.Error()}
}

// NewInvalidSchemaSyntax builds an InvalidSchemaSyntax error.
func NewInvalidSchemaSyntax(compileErr error) *Error {
	return &Error{Kind: InvalidSchemaSyntax, Detail: compileErr.Error()}
}

// NewOpenAPINotFound builds an OpenAPINotFound error for the given path.
func NewOpenAPINotFound(path string) *Error {
	return &Error{Kind: OpenAPINotFound, Detail: path}
}

// NewInvalidOpenAPI builds an InvalidOpenAPI error.
func NewInvalidOpenAPI(detail string) *Error {
	return &Error{Kind: InvalidOpenAPI, Detail: detail}
}

// NewOperationNotFoundByID builds an OperationNotFound error keyed by
// operationId.
func NewOperationNotFoundByID(operationID string) *Error {
	return &Error{Kind: OperationNotFound, Detail: "operationId " + operationID}
}

// NewOperationNotFoundByRoute builds an OperationNotFound error keyed by
// (method, path).
func NewOperationNotFoundByRoute(method, path string) *Error {
	return &Error{Kind: OperationNotFound, Detail: method + " " + path}
}

// NewBodyReadError builds a BodyReadError.
func NewBodyReadError(readErr error) *Error {
	return &Error{Kind: BodyReadError, Detail: readErr.Error()}
}

// NewInvalidJSON builds an InvalidJSON error.
func NewInvalidJSON(parseErr error) *Error {
	return &Error{Kind: InvalidJSON, Detail: parseErr.Error()}
}

// NewValidationFailed builds a ValidationFailed error from an ordered list
// of field failures.
func NewValidationFailed(failures []FieldFailure) *Error {
	return &Error{Kind: ValidationFailed, Failures: failures}
}

// NewResponseValidationFailed builds a ResponseValidationFailed error.
func NewResponseValidationFailed(detail string) *Error {
	return &Error{Kind: ResponseValidationFailed, Detail: detail}
}

// NewUpstreamConnect builds an UpstreamConnect error.
func NewUpstreamConnect(detail string) *Error {
	return &Error{Kind: UpstreamConnect, Detail: detail}
}

// NewUpstreamTimeout builds an UpstreamTimeout error.
func NewUpstreamTimeout(detail string) *Error {
	return &Error{Kind: UpstreamTimeout, Detail: detail}
}

// FromError wraps an arbitrary error as an internal-ish gateway error,
// matching the teacher's FromError escape hatch for values that did not
// originate in this taxonomy.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	if gwErr, ok := err.(*Error); ok {
		return gwErr
	}
	return &Error{Kind: InvalidOpenAPI, Detail: err.Error()}
}
