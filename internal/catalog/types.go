// Package catalog models API operation catalogs and their canonical
// tool-definition form, the unit everything downstream measures.
package catalog

// ToolDefinition is the canonical {name, description, inputSchema} record.
// Field order matters: serialization for token measurement must always emit
// name, description, inputSchema in that order.
type ToolDefinition struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	InputSchema *Schema `json:"inputSchema"`
}

// Schema is the subset of JSON Schema that tool definitions use.
// Map keys serialize sorted (encoding/json), so output is deterministic.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

// Operation describes one endpoint-verb pair as found in an OpenAPI-style
// catalog document. Read-only input to the normalizer.
type Operation struct {
	OperationID string       `json:"operationId"`
	Summary     string       `json:"summary"`
	Description string       `json:"description"`
	Parameters  []Parameter  `json:"parameters"`
	RequestBody *RequestBody `json:"requestBody"`
}

// Parameter describes one declared operation parameter.
type Parameter struct {
	Name        string  `json:"name"`
	In          string  `json:"in"`
	Required    bool    `json:"required"`
	Description string  `json:"description"`
	Schema      *Schema `json:"schema"`
}

// RequestBody holds per-content-type request body schemas.
type RequestBody struct {
	Required bool                 `json:"required"`
	Content  map[string]MediaType `json:"content"`
}

// MediaType wraps the schema for one content type.
type MediaType struct {
	Schema *Schema `json:"schema"`
}

// PathOperations maps an HTTP verb to its operation.
type PathOperations map[string]*Operation

// Catalog is the set of operations belonging to one connected service.
type Catalog struct {
	Name  string
	Paths map[string]PathOperations
}

// OperationCount returns the number of (path, verb) pairs in the catalog,
// excluding path-level parameter blocks.
func (c Catalog) OperationCount() int {
	n := 0
	for _, verbs := range c.Paths {
		for verb, op := range verbs {
			if verb == "parameters" || op == nil {
				continue
			}
			n++
		}
	}
	return n
}
