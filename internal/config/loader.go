package config

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

// validMethods is the HTTP method vocabulary a route's method must belong to.
var validMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true,
}

// Load parses and validates a route table from a YAML document, rejecting
// structurally invalid input with a location hint.
func Load(data []byte) (*RouteTable, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw RouteTable
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, err
	}

	for i := range raw.Routes {
		r := &raw.Routes[i]
		r.Method = strings.ToUpper(r.Method)
		r.Effective = Merge(&raw.Global, r.Override)
	}

	return &raw, nil
}

func validate(rt *RouteTable) error {
	if len(rt.Routes) == 0 {
		return fmt.Errorf("config: routes must be a non-empty list")
	}

	for i, r := range rt.Routes {
		loc := fmt.Sprintf("routes[%d]", i)

		method := strings.ToUpper(strings.TrimSpace(r.Method))
		if method == "" || !validMethods[method] {
			return fmt.Errorf("config: %s: method %q is not a recognized HTTP method", loc, r.Method)
		}

		if strings.TrimSpace(r.Upstream) == "" {
			return fmt.Errorf("config: %s: upstream must not be empty", loc)
		}
		if _, err := url.ParseRequestURI(r.Upstream); err != nil {
			return fmt.Errorf("config: %s: upstream %q is not a valid URL: %w", loc, r.Upstream, err)
		}

		if r.HasSchema() && r.HasOpenAPI() {
			return fmt.Errorf("config: %s: route carries both a schema and an openapi reference; at most one validator source is allowed", loc)
		}

		if r.HasOpenAPI() && strings.TrimSpace(r.OpenAPI.Spec) == "" {
			return fmt.Errorf("config: %s: openapi.spec must not be empty", loc)
		}
	}

	return nil
}
