// Package bench computes and compares the token cost of the two ways of
// exposing an operation catalog: the fixed four-tool indirection set versus
// full per-operation expansion.
package bench

import (
	"encoding/json"

	"github.com/toolgauge/toolgauge/internal/catalog"
	"github.com/toolgauge/toolgauge/internal/common"
	"github.com/toolgauge/toolgauge/internal/tokenizer"
)

// sampleSize is how many operations the synthesized search/describe response
// payloads cover in the fair accounting (mirrors a model inspecting its top
// search hits before invoking one).
const sampleSize = 5

// Pricing holds the configurable dollar-cost knobs.
type Pricing struct {
	// PricePerMillionTokens is the input token price in dollars.
	PricePerMillionTokens float64
	// MonthlyRequestsPerUser converts per-request cost to per-user-per-month.
	MonthlyRequestsPerUser int
	// AvgTokensPerOperation is the assumed cost of one expanded tool
	// definition, used only where expansion cannot be measured directly
	// (the live path).
	AvgTokensPerOperation int
}

// DefaultPricing returns the default pricing model: $3 per million input
// tokens, 1000 requests per user per month, 140 tokens per expanded
// operation (calibrated from static-catalog measurements).
func DefaultPricing() Pricing {
	return Pricing{
		PricePerMillionTokens:  3.0,
		MonthlyRequestsPerUser: 1000,
		AvgTokensPerOperation:  140,
	}
}

// CostPerRequest converts a token saving into dollars for one request.
func (p Pricing) CostPerRequest(tokensSaved int) float64 {
	return float64(tokensSaved) / 1_000_000 * p.PricePerMillionTokens
}

// CostPerUserPerMonth converts a token saving into dollars per user per month.
func (p Pricing) CostPerUserPerMonth(tokensSaved int) float64 {
	return p.CostPerRequest(tokensSaved) * float64(p.MonthlyRequestsPerUser)
}

// Result is one scenario's comparison outcome. Never mutated after
// construction; TokensSaved may legitimately be negative for small catalogs
// (expansion cheaper than indirection).
type Result struct {
	Scenario       string
	ServiceCount   int
	TotalToolCount int

	// Naive framing: one exposure of each tool set.
	IndirectionTokens int
	ExpansionTokens   int

	// Fair framing: indirection pays three interaction turns plus the
	// discovery/schema response payloads; expansion pays a single turn.
	FairIndirectionTokens int
	FairExpansionTokens   int

	TokensSaved  int
	PercentSaved float64

	CostPerRequest      float64
	CostPerUserPerMonth float64

	Warnings []string
}

// Comparator runs scenario comparisons against one pricing model.
type Comparator struct {
	pricing Pricing
	logger  *common.Logger
}

// NewComparator creates a comparator. A nil logger is replaced with a
// silent one.
func NewComparator(pricing Pricing, logger *common.Logger) *Comparator {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Comparator{pricing: pricing, logger: logger}
}

// Compare normalizes every catalog and measures both approaches. The naive
// and fair framings are computed as two separate calculations so reports can
// show both side by side.
func (c *Comparator) Compare(label string, catalogs []catalog.Catalog) Result {
	var tools []catalog.ToolDefinition
	for _, cat := range catalogs {
		normalized := catalog.Normalize(cat)
		c.logger.Debug().Str("catalog", cat.Name).Int("tools", len(normalized)).Msg("normalized catalog")
		tools = append(tools, normalized...)
	}

	indirection := 0
	for _, tool := range catalog.IndirectionTools() {
		indirection += tokenizer.EstimateTool(tool)
	}

	expansion := 0
	for _, tool := range tools {
		expansion += tokenizer.EstimateTool(tool)
	}

	saved := expansion - indirection
	percent := 0.0
	if expansion > 0 {
		percent = float64(saved) / float64(expansion) * 100
	}

	result := Result{
		Scenario:              label,
		ServiceCount:          len(catalogs),
		TotalToolCount:        len(tools),
		IndirectionTokens:     indirection,
		ExpansionTokens:       expansion,
		FairIndirectionTokens: FairIndirection(indirection, searchResponseTokens(tools), describeResponseTokens(tools)),
		FairExpansionTokens:   expansion,
		TokensSaved:           saved,
		PercentSaved:          percent,
		CostPerRequest:        c.pricing.CostPerRequest(saved),
		CostPerUserPerMonth:   c.pricing.CostPerUserPerMonth(saved),
	}

	c.logger.Info().
		Str("scenario", label).
		Int("tools", result.TotalToolCount).
		Int("indirection_tokens", result.IndirectionTokens).
		Int("expansion_tokens", result.ExpansionTokens).
		Int("tokens_saved", result.TokensSaved).
		Msg("scenario compared")

	return result
}

// FairIndirection is the multi-step workflow cost of the indirection
// approach: the tool set is exposed on each of the three interaction turns
// (discovery, schema-fetch, execution), plus the measured search and
// describe response payloads.
func FairIndirection(indirectionTokens, searchTokens, describeTokens int) int {
	return indirectionTokens*3 + searchTokens + describeTokens
}

// searchResponseTokens measures a representative search response: the name
// and description of the first sampleSize tools, as the search meta-tool
// would return them.
func searchResponseTokens(tools []catalog.ToolDefinition) int {
	type hit struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	hits := make([]hit, 0, sampleSize)
	for _, tool := range firstN(tools, sampleSize) {
		hits = append(hits, hit{Name: tool.Name, Description: tool.Description})
	}
	data, err := json.MarshalIndent(hits, "", "  ")
	if err != nil {
		return 0
	}
	return tokenizer.Estimate(string(data))
}

// describeResponseTokens measures a representative schema-fetch response:
// the full definitions of the first sampleSize tools.
func describeResponseTokens(tools []catalog.ToolDefinition) int {
	data, err := json.MarshalIndent(firstN(tools, sampleSize), "", "  ")
	if err != nil {
		return 0
	}
	return tokenizer.Estimate(string(data))
}

func firstN(tools []catalog.ToolDefinition, n int) []catalog.ToolDefinition {
	if len(tools) < n {
		n = len(tools)
	}
	return tools[:n]
}
