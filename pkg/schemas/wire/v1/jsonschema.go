package wire

import "github.com/roboricindustries/sync-events/pkg/shape"

// Exported schema documents, keyed by name.
const (
	SchemaUpdate          = "update"
	SchemaEvent           = "event"
	SchemaUpdateContainer = "update-container"
)

// JSONSchemas exports the message unions as draft-07 JSON Schema documents
// for clients that cannot link this package.
func JSONSchemas() map[string]map[string]any {
	return map[string]map[string]any{
		SchemaUpdate:          shape.JSONSchema(UpdateShape, "Durable update"),
		SchemaEvent:           shape.JSONSchema(EventShape, "Ephemeral event"),
		SchemaUpdateContainer: shape.JSONSchema(UpdateContainerShape, "Update container"),
	}
}
