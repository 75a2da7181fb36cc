// schema-generator writes the JSON Schemas for Relay.toml and the user
// config file into the current directory.
package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/relaybuild/relay/pkg/config"
	"github.com/relaybuild/relay/pkg/manifest"
)

func main() {
	write("relay.schema.json", manifest.Schema())

	r := &jsonschema.Reflector{
		ExpandedStruct: true,
		FieldNameTag:   "toml",
	}
	schema := r.Reflect(&config.Config{})
	schema.Title = "Relay user configuration"
	schema.Description = "Schema for ~/.config/relay/config.toml."
	// Every setting is optional.
	schema.Required = nil
	write("relay-config.schema.json", schema)
}

func write(path string, schema *jsonschema.Schema) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling schema: %v", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}
	log.Printf("Successfully generated %s", path)
}
