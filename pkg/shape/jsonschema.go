package shape

// Draft is the JSON Schema dialect JSONSchema emits.
const Draft = "http://json-schema.org/draft-07/schema#"

// JSONSchema exports s as a standalone JSON Schema document. Objects allow
// additional properties because parsing strips them rather than rejecting them.
func JSONSchema(s Schema, title string) map[string]any {
	doc := s.describe()
	doc["$schema"] = Draft
	if title != "" {
		doc["title"] = title
	}
	return doc
}
