package catalog

import "fmt"

// Path shapes and verbs cycled by the synthetic generator. Every resource
// group of 5 operations covers each shape and each verb exactly once.
var (
	syntheticShapes = []string{"/%s", "/%s/{id}", "/%s/{id}/details", "/%s/{id}/actions", "/%s/search"}
	syntheticVerbs  = []string{"get", "post", "put", "patch", "delete"}
)

// GenerateSynthetic produces a deterministic catalog of n operations for
// stress-testing the comparison at scales beyond available sample catalogs.
// The result round-trips through Normalize like any real catalog: n
// operations always normalize to exactly n tool definitions.
func GenerateSynthetic(n int) Catalog {
	c := Catalog{
		Name:  fmt.Sprintf("synthetic-%d", n),
		Paths: make(map[string]PathOperations),
	}
	for i := 0; i < n; i++ {
		resource := fmt.Sprintf("resource%d", i/5)
		path := fmt.Sprintf(syntheticShapes[i%5], resource)
		verb := syntheticVerbs[i%5]

		op := &Operation{
			Summary: fmt.Sprintf("Synthetic %s operation on %s", verb, path),
		}
		if pathHasID(path) {
			op.Parameters = append(op.Parameters, Parameter{
				Name:        "id",
				In:          "path",
				Required:    true,
				Description: "Resource identifier",
				Schema:      &Schema{Type: "string"},
			})
		}
		if verb == "post" || verb == "put" || verb == "patch" {
			op.RequestBody = syntheticBody()
		}

		if c.Paths[path] == nil {
			c.Paths[path] = PathOperations{}
		}
		c.Paths[path][verb] = op
	}
	return c
}

func pathHasID(path string) bool {
	for i := 0; i+3 < len(path); i++ {
		if path[i:i+4] == "{id}" {
			return true
		}
	}
	return false
}

// syntheticBody returns the fixed-shape JSON request body every mutating
// synthetic operation carries.
func syntheticBody() *RequestBody {
	return &RequestBody{
		Required: true,
		Content: map[string]MediaType{
			"application/json": {
				Schema: &Schema{
					Type: "object",
					Properties: map[string]*Schema{
						"name":        {Type: "string", Description: "Display name"},
						"description": {Type: "string", Description: "Free-text description"},
						"status":      {Type: "string", Enum: []string{"active", "inactive"}},
					},
					Required: []string{"name"},
				},
			},
		},
	}
}
