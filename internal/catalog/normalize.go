package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// verbOrder is the canonical iteration order for HTTP verbs within a path.
var verbOrder = []string{"get", "post", "put", "patch", "delete", "head", "options"}

// Normalize converts a catalog into a flat list of canonical tool
// definitions, one per (path, verb) pair. Deterministic: paths are visited
// in sorted order and verbs in canonical order, so the same catalog always
// yields a bit-identical sequence.
func Normalize(c Catalog) []ToolDefinition {
	paths := make([]string, 0, len(c.Paths))
	for p := range c.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	seen := make(map[string]int)
	var tools []ToolDefinition
	for _, path := range paths {
		for _, verb := range orderedVerbs(c.Paths[path]) {
			op := c.Paths[path][verb]
			if op == nil {
				continue
			}
			tools = append(tools, normalizeOperation(path, verb, op, seen))
		}
	}
	return tools
}

// orderedVerbs returns the verbs present on a path: canonical verbs first in
// fixed order, any non-standard verbs after in sorted order. The path-level
// "parameters" block is not a verb and is skipped.
func orderedVerbs(verbs PathOperations) []string {
	var out []string
	canonical := make(map[string]bool, len(verbOrder))
	for _, v := range verbOrder {
		canonical[v] = true
		if _, ok := verbs[v]; ok {
			out = append(out, v)
		}
	}
	var extra []string
	for v := range verbs {
		if v == "parameters" || canonical[v] {
			continue
		}
		extra = append(extra, v)
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// normalizeOperation builds one ToolDefinition from an operation.
func normalizeOperation(path, verb string, op *Operation, seen map[string]int) ToolDefinition {
	name := op.OperationID
	if name == "" {
		name = verb + "_" + sanitizePath(path)
	}
	// Tool names must be unique within one normalized output; collisions get
	// a numeric suffix so every operation still maps to exactly one tool.
	seen[name]++
	if n := seen[name]; n > 1 {
		name = fmt.Sprintf("%s_%d", name, n)
	}

	desc := op.Description
	if desc == "" {
		desc = op.Summary
	}
	if desc == "" {
		desc = strings.ToUpper(verb) + " " + path
	}

	schema := &Schema{
		Type:       "object",
		Properties: map[string]*Schema{},
	}
	var required []string
	requiredSeen := make(map[string]bool)

	for _, p := range op.Parameters {
		prop := &Schema{Type: "string"}
		if p.Schema != nil {
			if p.Schema.Type != "" {
				prop.Type = p.Schema.Type
			}
			if len(p.Schema.Enum) > 0 {
				prop.Enum = append([]string(nil), p.Schema.Enum...)
			}
		}
		if p.Description != "" {
			prop.Description = p.Description
		}
		schema.Properties[p.Name] = prop
		if p.Required && !requiredSeen[p.Name] {
			requiredSeen[p.Name] = true
			required = append(required, p.Name)
		}
	}

	if body := jsonBodySchema(op.RequestBody); body != nil {
		for name, prop := range body.Properties {
			schema.Properties[name] = prop
		}
		for _, name := range body.Required {
			if !requiredSeen[name] {
				requiredSeen[name] = true
				required = append(required, name)
			}
		}
	}

	if len(required) > 0 {
		schema.Required = required
	}

	return ToolDefinition{Name: name, Description: desc, InputSchema: schema}
}

// jsonBodySchema returns the application/json schema of a request body, if any.
func jsonBodySchema(rb *RequestBody) *Schema {
	if rb == nil {
		return nil
	}
	mt, ok := rb.Content["application/json"]
	if !ok || mt.Schema == nil {
		return nil
	}
	return mt.Schema
}

// sanitizePath replaces every non-alphanumeric character with an underscore.
func sanitizePath(path string) string {
	var b strings.Builder
	for _, r := range path {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
