package config

import "gopkg.in/yaml.v3"

// UnmarshalYAML accepts the shorthand `openapi: ./api.yaml` form as well as
// the structured `openapi: {spec: ..., operation_id: ...}` form.
func (o *OpenAPIRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var path string
		if err := node.Decode(&path); err != nil {
			return err
		}
		o.Spec = path
		return nil
	}

	type plain OpenAPIRef
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*o = OpenAPIRef(p)
	return nil
}
