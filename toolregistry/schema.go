package toolregistry

import "github.com/invopop/jsonschema"

// SchemaFor derives a JSON schema map for a host-native tool's argument
// struct, so Go tools can publish input_schema without hand-writing it.
func SchemaFor(args any) map[string]any {
	reflector := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	schema := reflector.Reflect(args)
	out := map[string]any{
		"type": "object",
	}
	if schema.Properties != nil {
		props := map[string]any{}
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			props[pair.Key] = pair.Value
		}
		out["properties"] = props
	}
	if len(schema.Required) > 0 {
		out["required"] = schema.Required
	}
	return out
}
