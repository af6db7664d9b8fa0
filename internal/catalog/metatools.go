package catalog

// Meta-tool names. The live measurement path calls remote tools by these
// names, so they are shared constants rather than literals.
const (
	MetaListServices = "list_services"
	MetaSearchOps    = "search_operations"
	MetaDescribeOps  = "describe_operations"
	MetaInvokeOp     = "invoke_operation"
)

// IndirectionTools returns the fixed four-tool indirection interface: a
// constant-size set through which a model can discover and invoke any
// cataloged operation. Its total token cost does not depend on catalog size,
// which is the claim the cost model quantifies.
func IndirectionTools() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        MetaListServices,
			Description: "List all connected API services. Returns each service's name, description, and operation count. Call this first to discover what is available before searching for operations.",
			InputSchema: &Schema{Type: "object", Properties: map[string]*Schema{}},
		},
		{
			Name:        MetaSearchOps,
			Description: "Keyword-search operations across every connected service. Returns matching operation names with one-line summaries. Use describe_operations to fetch the full parameter schema of a match before invoking it.",
			InputSchema: &Schema{
				Type: "object",
				Properties: map[string]*Schema{
					"query":   {Type: "string", Description: "Search keywords, e.g. 'create invoice' or 'list customers'"},
					"service": {Type: "string", Description: "Restrict the search to one service by name"},
					"limit":   {Type: "integer", Description: "Maximum number of results to return (default: 10)"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        MetaDescribeOps,
			Description: "Fetch the full input schema for one or more operations by name. Always call this before invoke_operation for any operation whose schema you have not seen in this session.",
			InputSchema: &Schema{
				Type: "object",
				Properties: map[string]*Schema{
					"names": {
						Type:        "array",
						Description: "Operation names as returned by search_operations",
						Items:       &Schema{Type: "string"},
					},
				},
				Required: []string{"names"},
			},
		},
		{
			Name:        MetaInvokeOp,
			Description: "Invoke a named operation with a JSON arguments object matching its input schema. Returns the operation's response payload as text. Arguments that fail schema validation are rejected with a descriptive error.",
			InputSchema: &Schema{
				Type: "object",
				Properties: map[string]*Schema{
					"name":      {Type: "string", Description: "Operation name, exactly as returned by search_operations"},
					"arguments": {Type: "object", Description: "Arguments object matching the operation's input schema"},
				},
				Required: []string{"name"},
			},
		},
	}
}
