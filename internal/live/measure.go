package live

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/toolgauge/toolgauge/internal/bench"
	"github.com/toolgauge/toolgauge/internal/catalog"
	"github.com/toolgauge/toolgauge/internal/common"
	"github.com/toolgauge/toolgauge/internal/tokenizer"
)

// describeSample is how many search matches get their schemas fetched.
const describeSample = 5

// Result aggregates one live measurement run. The expansion side is an
// estimate (operationCount x AvgTokensPerOperation): a live endpoint never
// exposes a literal expanded definition for every operation, so there is
// nothing to measure directly. That approximation is deliberate and
// configurable, not a gap to paper over with invented measurements.
type Result struct {
	ServerURL      string
	ToolCount      int
	ServiceCount   int
	OperationCount int

	DiscoveryTokens int
	SearchTokens    int
	DescribeTokens  int

	IndirectionTokens        int
	FairIndirectionTokens    int
	EstimatedExpansionTokens int

	TokensSaved  int
	PercentSaved float64

	CostPerRequest      float64
	CostPerUserPerMonth float64

	Warnings []string
}

// Measurer drives the meta-tool workflow against a live session and feeds
// the measured response sizes into the fair accounting formula.
type Measurer struct {
	session Session
	pricing bench.Pricing
	logger  *common.Logger

	// Query is the representative search the workflow issues.
	Query string
}

// NewMeasurer creates a measurer. A nil logger is replaced with a silent one.
func NewMeasurer(session Session, pricing bench.Pricing, logger *common.Logger) *Measurer {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Measurer{
		session: session,
		pricing: pricing,
		logger:  logger,
		Query:   "list",
	}
}

// Run executes the workflow strictly sequentially: list tools, discovery
// call, search call, schema fetch for the first matches. The search step is
// load-bearing; its failure fails the run. Discovery and describe failures
// degrade to warnings so a partially-cooperative endpoint still yields
// numbers.
func (m *Measurer) Run(ctx context.Context, serverURL string) (*Result, error) {
	tools, err := m.session.ListTools(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{ServerURL: serverURL, ToolCount: len(tools)}
	result.IndirectionTokens = m.indirectionTokens(tools, result)

	// Discovery turn.
	discovery, err := m.session.CallTool(ctx, catalog.MetaListServices, nil)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("discovery call failed: %v", err))
	} else {
		result.DiscoveryTokens = tokenizer.Estimate(discovery)
		result.ServiceCount, result.OperationCount = parseDiscovery(discovery)
	}

	// Search turn.
	search, err := m.session.CallTool(ctx, catalog.MetaSearchOps, map[string]any{"query": m.Query})
	if err != nil {
		return nil, err
	}
	result.SearchTokens = tokenizer.Estimate(search)

	// Schema-fetch turn for the first matches.
	names := parseOperationNames(search, describeSample)
	if len(names) == 0 {
		result.Warnings = append(result.Warnings, "could not extract operation names from search response; describe step skipped")
	} else {
		describe, err := m.session.CallTool(ctx, catalog.MetaDescribeOps, map[string]any{"names": names})
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("describe call failed: %v", err))
		} else {
			result.DescribeTokens = tokenizer.Estimate(describe)
		}
	}

	if result.OperationCount == 0 {
		result.OperationCount = len(tools)
		result.Warnings = append(result.Warnings, "discovery response did not report operation counts; using listed tool count")
	}
	if result.ServiceCount == 0 {
		result.ServiceCount = 1
		result.Warnings = append(result.Warnings, "discovery response did not report services; assuming one service")
	}

	result.FairIndirectionTokens = bench.FairIndirection(result.IndirectionTokens, result.SearchTokens, result.DescribeTokens)
	result.EstimatedExpansionTokens = result.OperationCount * m.pricing.AvgTokensPerOperation

	result.TokensSaved = result.EstimatedExpansionTokens - result.IndirectionTokens
	if result.EstimatedExpansionTokens > 0 {
		result.PercentSaved = float64(result.TokensSaved) / float64(result.EstimatedExpansionTokens) * 100
	}
	result.CostPerRequest = m.pricing.CostPerRequest(result.TokensSaved)
	result.CostPerUserPerMonth = m.pricing.CostPerUserPerMonth(result.TokensSaved)

	m.logger.Info().
		Int("tools", result.ToolCount).
		Int("operations", result.OperationCount).
		Int("fair_indirection_tokens", result.FairIndirectionTokens).
		Int("estimated_expansion_tokens", result.EstimatedExpansionTokens).
		Msg("live measurement complete")

	return result, nil
}

// indirectionTokens measures the four meta-tool definitions as the endpoint
// actually serves them. A meta-tool the endpoint does not list is costed
// from the static definition, with a warning.
func (m *Measurer) indirectionTokens(tools []mcp.Tool, result *Result) int {
	listed := make(map[string]mcp.Tool, len(tools))
	for _, t := range tools {
		listed[t.Name] = t
	}

	total := 0
	for _, static := range catalog.IndirectionTools() {
		if remote, ok := listed[static.Name]; ok {
			total += estimateRemoteTool(remote)
			continue
		}
		result.Warnings = append(result.Warnings, fmt.Sprintf("endpoint does not list %s; using static definition", static.Name))
		total += tokenizer.EstimateTool(static)
	}
	return total
}

// estimateRemoteTool measures a remote tool definition with the same stable
// serialization used for static definitions.
func estimateRemoteTool(t mcp.Tool) int {
	data, err := json.MarshalIndent(struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		InputSchema any    `json:"inputSchema"`
	}{t.Name, t.Description, t.InputSchema}, "", "  ")
	if err != nil {
		return 0
	}
	return tokenizer.Estimate(string(data))
}

// parseDiscovery extracts service and operation counts from a discovery
// response. Both a bare array and a {services: [...]} wrapper are accepted;
// anything else yields zeros.
func parseDiscovery(text string) (services, operations int) {
	type service struct {
		Name           string `json:"name"`
		Operations     int    `json:"operations"`
		OperationCount int    `json:"operation_count"`
	}

	var list []service
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		var wrapped struct {
			Services []service `json:"services"`
		}
		if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
			return 0, 0
		}
		list = wrapped.Services
	}

	for _, s := range list {
		n := s.Operations
		if n == 0 {
			n = s.OperationCount
		}
		operations += n
	}
	return len(list), operations
}

// parseOperationNames extracts up to limit operation names from a search
// response. Accepted shapes: array of {name}, {results: [{name}]}, or a
// bare string array.
func parseOperationNames(text string, limit int) []string {
	type match struct {
		Name string `json:"name"`
	}

	collect := func(matches []match) []string {
		var names []string
		for _, m := range matches {
			if m.Name == "" {
				continue
			}
			names = append(names, m.Name)
			if len(names) == limit {
				break
			}
		}
		return names
	}

	var matches []match
	if err := json.Unmarshal([]byte(text), &matches); err == nil {
		if names := collect(matches); len(names) > 0 {
			return names
		}
	}

	var wrapped struct {
		Results []match `json:"results"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil {
		if names := collect(wrapped.Results); len(names) > 0 {
			return names
		}
	}

	var plain []string
	if err := json.Unmarshal([]byte(text), &plain); err == nil {
		if len(plain) > limit {
			plain = plain[:limit]
		}
		return plain
	}

	return nil
}
