// Package config parses and validates the gateway's route table: a YAML
// document of global defaults plus an ordered list of routes, each carrying
// an upstream, an optional validator source, and an optional policy
// override.
package config

// Policy is the three independent booleans that govern error handling for
// a route.
type Policy struct {
	ForwardOnError      *bool `yaml:"forward_on_error"`
	AddErrorHeader      *bool `yaml:"add_error_header"`
	AddValidationHeader *bool `yaml:"add_validation_header"`
}

// EffectivePolicy is the fully-resolved, precomputed merge of global and
// route-level policy: the hot path never touches the global defaults
// again.
type EffectivePolicy struct {
	ForwardOnError      bool
	AddErrorHeader      bool
	AddValidationHeader bool
}

// defaultPolicyValue is the hard default for every policy field when
// neither a route override nor the global config specifies one.
const defaultPolicyValue = true

// Merge computes the effective policy: each field independently takes the
// override's value if present, else the base's value if present, else the
// hard default of true.
func Merge(base, override *Policy) EffectivePolicy {
	return EffectivePolicy{
		ForwardOnError:      resolveBool(defaultPolicyValue, base.field(func(p *Policy) *bool { return p.ForwardOnError }), override.field(func(p *Policy) *bool { return p.ForwardOnError })),
		AddErrorHeader:      resolveBool(defaultPolicyValue, base.field(func(p *Policy) *bool { return p.AddErrorHeader }), override.field(func(p *Policy) *bool { return p.AddErrorHeader })),
		AddValidationHeader: resolveBool(defaultPolicyValue, base.field(func(p *Policy) *bool { return p.AddValidationHeader }), override.field(func(p *Policy) *bool { return p.AddValidationHeader })),
	}
}

func (p *Policy) field(get func(*Policy) *bool) *bool {
	if p == nil {
		return nil
	}
	return get(p)
}

func resolveBool(def bool, base, override *bool) bool {
	if override != nil {
		return *override
	}
	if base != nil {
		return *base
	}
	return def
}

// OpenAPIRef is the OpenAPI validator source for a route: a document path
// plus an optional explicit operationId.
type OpenAPIRef struct {
	Spec        string `yaml:"spec"`
	OperationID string `yaml:"operation_id,omitempty"`
}

// Route is one entry of the route table.
type Route struct {
	Path     string      `yaml:"path"`
	Method   string      `yaml:"method"`
	Upstream string      `yaml:"upstream"`
	Schema   string      `yaml:"schema,omitempty"`
	OpenAPI  *OpenAPIRef `yaml:"openapi,omitempty"`
	Override *Policy     `yaml:"config,omitempty"`

	// Effective is computed once at load time by RouteTable construction.
	Effective EffectivePolicy `yaml:"-"`
}

// HasSchema reports whether the route carries a bare JSON Schema source.
func (r *Route) HasSchema() bool { return r.Schema != "" }

// HasOpenAPI reports whether the route carries an OpenAPI source.
func (r *Route) HasOpenAPI() bool { return r.OpenAPI != nil }

// RouteTable is the global policy plus the ordered route list.
type RouteTable struct {
	Global Policy  `yaml:"global"`
	Routes []Route `yaml:"routes"`
}
