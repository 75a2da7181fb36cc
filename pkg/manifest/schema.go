package manifest

import "github.com/invopop/jsonschema"

// JSONSchema describes the two accepted forms of a dependency entry.
func (Dependency) JSONSchema() *jsonschema.Schema {
	table := jsonschema.NewProperties()
	table.Set("version", &jsonschema.Schema{
		Type:        "string",
		Description: "Version constraint, '*' for any",
	})
	table.Set("features", &jsonschema.Schema{
		Type:        "array",
		Items:       &jsonschema.Schema{Type: "string"},
		Description: "vcpkg features to enable",
	})
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string", Description: "Version constraint, '*' for any"},
			{Type: "object", Properties: table},
		},
	}
}

// Schema returns the JSON Schema of Relay.toml.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		FieldNameTag:   "toml",
		ExpandedStruct: true,
	}
	schema := r.Reflect(&Manifest{})
	schema.Title = "Relay manifest"
	schema.Description = "Schema for Relay.toml, the dependency manifest of a relay project."
	schema.Required = []string{"project"}
	return schema
}
