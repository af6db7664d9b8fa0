package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/toolgauge/toolgauge/internal/bench"
	"github.com/toolgauge/toolgauge/internal/catalog"
	"github.com/toolgauge/toolgauge/internal/common"
	"github.com/toolgauge/toolgauge/internal/config"
	"github.com/toolgauge/toolgauge/internal/live"
	"github.com/toolgauge/toolgauge/internal/render"
	"github.com/toolgauge/toolgauge/internal/tokenizer"
)

// defaultSyntheticScales drives the comparison when no static catalogs are
// available: around, at, and far past the expected break-even.
var defaultSyntheticScales = []int{5, 15, 50, 250}

func main() {
	os.Exit(run())
}

// run holds the real entrypoint so deferred cleanup (estimator release)
// happens before the process exits.
func run() int {
	configFile := flag.String("config", "toolgauge.toml", "Path to config file")
	catalogDir := flag.String("catalogs", "", "Directory of catalog documents (overrides config)")
	synthetic := flag.String("synthetic", "", "Comma-separated synthetic operation counts, e.g. 5,50,250")
	liveMode := flag.Bool("live", false, "Measure a live MCP endpoint instead of static catalogs")
	serverURL := flag.String("server", "", "Live MCP endpoint URL (overrides config)")
	token := flag.String("token", "", "Bearer credential for the live endpoint (overrides config)")
	plain := flag.Bool("markdown", false, "Emit plain markdown, skipping terminal rendering")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(common.GetFullVersion())
		return 0
	}

	cfg, err := config.LoadFromFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		return 1
	}
	if *catalogDir != "" {
		cfg.Catalogs.Dir = *catalogDir
	}
	if *serverURL != "" {
		cfg.Live.ServerURL = *serverURL
	}
	if *token != "" {
		cfg.Live.Token = *token
	}

	logger := common.NewLoggerFromConfig(cfg.Logging).WithCorrelationId(uuid.NewString())

	if cfg.Estimator.Strategy == "tiktoken" {
		tokenizer.Use(tokenizer.NewTiktoken(cfg.Estimator.Model))
	}
	defer func() {
		if err := tokenizer.Shutdown(); err != nil {
			logger.Warn().Str("error", err.Error()).Msg("estimator shutdown")
		}
	}()
	logger.Info().Str("estimator", tokenizer.Active().Name()).Msg("starting comparison run")

	pricing := bench.Pricing{
		PricePerMillionTokens:  cfg.Pricing.PricePerMillionTokens,
		MonthlyRequestsPerUser: cfg.Pricing.MonthlyRequestsPerUser,
		AvgTokensPerOperation:  cfg.Pricing.AvgTokensPerOperation,
	}

	if *liveMode {
		return runLive(cfg, pricing, logger, *plain)
	}
	// A catalog directory the operator asked for must exist; only the
	// untouched default may be absent.
	explicitDir := *catalogDir != "" || cfg.Catalogs.Dir != config.NewDefaultConfig().Catalogs.Dir
	return runStatic(cfg, pricing, logger, *synthetic, explicitDir, *plain)
}

// runStatic compares static catalog documents and synthetic catalogs. An
// explicitly configured catalog directory must be readable; the untouched
// default may be absent, in which case the synthetic scenarios run alone.
func runStatic(cfg *config.Config, pricing bench.Pricing, logger *common.Logger, synthetic string, explicitDir, plain bool) int {
	var catalogs []catalog.Catalog
	var warnings []string

	if cfg.Catalogs.Dir != "" {
		switch _, statErr := os.Stat(cfg.Catalogs.Dir); {
		case statErr != nil && explicitDir:
			fmt.Fprintf(os.Stderr, "catalog directory %s: %v\n", cfg.Catalogs.Dir, statErr)
			return 1
		case statErr != nil:
			logger.Debug().Str("dir", cfg.Catalogs.Dir).Msg("default catalog directory absent")
		default:
			var err error
			catalogs, warnings, err = catalog.LoadDir(cfg.Catalogs.Dir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "catalog error: %v\n", err)
				return 1
			}
			for _, w := range warnings {
				logger.Warn().Msg(w)
			}
		}
	}

	scales, err := parseScales(synthetic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -synthetic value: %v\n", err)
		return 1
	}
	if len(catalogs) == 0 && len(scales) == 0 {
		if len(warnings) > 0 {
			fmt.Fprintln(os.Stderr, "no usable catalogs loaded and no synthetic scales requested")
			return 1
		}
		scales = defaultSyntheticScales
	}

	comparator := bench.NewComparator(pricing, logger)
	var results []bench.Result

	for _, cat := range catalogs {
		results = append(results, comparator.Compare(cat.Name, []catalog.Catalog{cat}))
	}
	if len(catalogs) > 1 {
		results = append(results, comparator.Compare("all services", catalogs))
	}
	for _, n := range scales {
		label := fmt.Sprintf("synthetic (%d ops)", n)
		results = append(results, comparator.Compare(label, []catalog.Catalog{catalog.GenerateSynthetic(n)}))
	}

	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "nothing to compare")
		return 1
	}
	// Loader warnings ride on the first scenario so the report shows them.
	results[0].Warnings = append(results[0].Warnings, warnings...)

	fmt.Print(render.Terminal(render.FormatResults(results, pricing), plain))
	return 0
}

// runLive measures a running MCP endpoint.
func runLive(cfg *config.Config, pricing bench.Pricing, logger *common.Logger, plain bool) int {
	token, err := cfg.ResolveLiveToken()
	if err != nil {
		fmt.Fprintf(os.Stderr, "credential error: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	session, err := live.Dial(ctx, cfg.Live.ServerURL, token, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "live measurement failed: %v\n", err)
		return 1
	}
	defer session.Close()

	result, err := live.NewMeasurer(session, pricing, logger).Run(ctx, cfg.Live.ServerURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "live measurement failed: %v\n", err)
		return 1
	}

	fmt.Print(render.Terminal(render.FormatLive(result, pricing), plain))
	return 0
}

// parseScales parses the -synthetic flag: a comma-separated list of
// non-negative operation counts.
func parseScales(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var scales []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", part)
		}
		if n < 0 {
			return nil, fmt.Errorf("operation count must be >= 0, got %d", n)
		}
		scales = append(scales, n)
	}
	return scales, nil
}
