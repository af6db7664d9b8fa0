// Package render formats comparison results for presentation. The core
// hands it plain records; everything here is downstream formatting.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"

	"github.com/toolgauge/toolgauge/internal/bench"
	"github.com/toolgauge/toolgauge/internal/live"
)

// FormatResults formats static/synthetic scenario results as markdown.
func FormatResults(results []bench.Result, pricing bench.Pricing) string {
	var sb strings.Builder

	sb.WriteString("# Tool Exposure Cost Comparison\n\n")
	sb.WriteString(fmt.Sprintf("Pricing: $%.2f per million input tokens, %d requests per user per month.\n\n",
		pricing.PricePerMillionTokens, pricing.MonthlyRequestsPerUser))

	sb.WriteString("## Naive framing (single exposure of each tool set)\n\n")
	sb.WriteString("| Scenario | Services | Tools | Indirection | Expansion | Saved | Saved % | $/request | $/user/month |\n")
	sb.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %d | %.1f%% | $%.6f | $%.2f |\n",
			r.Scenario, r.ServiceCount, r.TotalToolCount,
			r.IndirectionTokens, r.ExpansionTokens, r.TokensSaved, r.PercentSaved,
			r.CostPerRequest, r.CostPerUserPerMonth))
	}

	sb.WriteString("\n## Fair framing (indirection pays three turns plus response payloads)\n\n")
	sb.WriteString("| Scenario | Tools | Fair indirection | Fair expansion | Winner |\n")
	sb.WriteString("|---|---:|---:|---:|---|\n")
	for _, r := range results {
		winner := "indirection"
		if r.FairExpansionTokens < r.FairIndirectionTokens {
			winner = "expansion"
		}
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %s |\n",
			r.Scenario, r.TotalToolCount, r.FairIndirectionTokens, r.FairExpansionTokens, winner))
	}

	sb.WriteString("\nNegative savings mean expansion is cheaper — expected for small catalogs.\n")
	sb.WriteString("Under the fair framing the curves typically cross between 12 and 20 cataloged operations.\n")

	warned := false
	for _, r := range results {
		for _, w := range r.Warnings {
			if !warned {
				sb.WriteString("\n## Warnings\n\n")
				warned = true
			}
			sb.WriteString(fmt.Sprintf("- %s: %s\n", r.Scenario, w))
		}
	}

	return sb.String()
}

// FormatLive formats a live measurement result as markdown.
func FormatLive(r *live.Result, pricing bench.Pricing) string {
	var sb strings.Builder

	sb.WriteString("# Live Measurement\n\n")
	sb.WriteString(fmt.Sprintf("**Endpoint:** %s\n", r.ServerURL))
	sb.WriteString(fmt.Sprintf("**Services:** %d\n", r.ServiceCount))
	sb.WriteString(fmt.Sprintf("**Cataloged operations:** %d\n\n", r.OperationCount))

	sb.WriteString("## Measured workflow\n\n")
	sb.WriteString(fmt.Sprintf("- Meta-tool definitions: %d tokens\n", r.IndirectionTokens))
	sb.WriteString(fmt.Sprintf("- Discovery response: %d tokens\n", r.DiscoveryTokens))
	sb.WriteString(fmt.Sprintf("- Search response: %d tokens\n", r.SearchTokens))
	sb.WriteString(fmt.Sprintf("- Schema response: %d tokens\n", r.DescribeTokens))
	sb.WriteString(fmt.Sprintf("- Fair indirection total: %d tokens\n\n", r.FairIndirectionTokens))

	sb.WriteString("## Comparison\n\n")
	sb.WriteString(fmt.Sprintf("- Estimated full expansion: %d tokens (%d operations x %d tokens; the endpoint never exposes every operation flattened, so this side is an estimate)\n",
		r.EstimatedExpansionTokens, r.OperationCount, pricing.AvgTokensPerOperation))
	sb.WriteString(fmt.Sprintf("- Tokens saved: %d (%.1f%%)\n", r.TokensSaved, r.PercentSaved))
	sb.WriteString(fmt.Sprintf("- Cost: $%.6f per request, $%.2f per user per month\n", r.CostPerRequest, r.CostPerUserPerMonth))

	if len(r.Warnings) > 0 {
		sb.WriteString("\n## Warnings\n\n")
		for _, w := range r.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
	}

	return sb.String()
}

// Terminal renders markdown for a terminal. When stdout is not a TTY, or
// plain output is forced, the markdown passes through untouched.
func Terminal(markdown string, forcePlain bool) string {
	if forcePlain || !isatty.IsTerminal(os.Stdout.Fd()) {
		return markdown
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return markdown
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
