package bench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/toolgauge/toolgauge/internal/catalog"
	"github.com/toolgauge/toolgauge/internal/common"
)

func testComparator() *Comparator {
	return NewComparator(DefaultPricing(), common.NewSilentLogger())
}

func compareSynthetic(t *testing.T, n int) Result {
	t.Helper()
	return testComparator().Compare("test", []catalog.Catalog{catalog.GenerateSynthetic(n)})
}

// --- Invariant Tests ---

func TestCompare_IndirectionCostIsConstant(t *testing.T) {
	small := compareSynthetic(t, 5)
	large := compareSynthetic(t, 250)
	if small.IndirectionTokens != large.IndirectionTokens {
		t.Errorf("indirection cost must not depend on catalog size: %d vs %d",
			small.IndirectionTokens, large.IndirectionTokens)
	}
	if small.IndirectionTokens <= 0 {
		t.Errorf("indirection cost should be positive, got %d", small.IndirectionTokens)
	}
}

func TestCompare_EmptyCatalog(t *testing.T) {
	r := compareSynthetic(t, 0)
	if r.TotalToolCount != 0 {
		t.Errorf("expected 0 tools, got %d", r.TotalToolCount)
	}
	if r.ExpansionTokens != 0 {
		t.Errorf("expected 0 expansion tokens, got %d", r.ExpansionTokens)
	}
	if r.PercentSaved != 0 {
		t.Errorf("percentageSaved must be 0 for an empty catalog, got %f", r.PercentSaved)
	}
	if r.TokensSaved >= 0 {
		t.Errorf("empty catalog should show negative savings (indirection pure overhead), got %d", r.TokensSaved)
	}
}

func TestCompare_SmallCatalogFavorsExpansion(t *testing.T) {
	r := compareSynthetic(t, 5)
	if r.TotalToolCount != 5 {
		t.Fatalf("expected 5 tools, got %d", r.TotalToolCount)
	}
	if r.FairExpansionTokens >= r.FairIndirectionTokens {
		t.Errorf("at 5 operations expansion should win the fair framing: expansion=%d indirection=%d",
			r.FairExpansionTokens, r.FairIndirectionTokens)
	}
}

func TestCompare_LargeCatalogFavorsIndirection(t *testing.T) {
	r := compareSynthetic(t, 250)
	if r.TotalToolCount != 250 {
		t.Fatalf("expected 250 tools, got %d", r.TotalToolCount)
	}
	if r.ExpansionTokens <= r.FairIndirectionTokens {
		t.Errorf("at 250 operations indirection should win even the fair framing: expansion=%d fairIndirection=%d",
			r.ExpansionTokens, r.FairIndirectionTokens)
	}
	if r.PercentSaved <= 95 {
		t.Errorf("expected >95%% saved at 250 operations, got %.1f%%", r.PercentSaved)
	}
}

func TestCompare_FiftyOperations(t *testing.T) {
	r := compareSynthetic(t, 50)
	if r.TotalToolCount != 50 {
		t.Errorf("expected totalToolCount 50, got %d", r.TotalToolCount)
	}
	if r.ExpansionTokens <= r.IndirectionTokens {
		t.Errorf("50 operations should exceed the break-even: expansion=%d indirection=%d",
			r.ExpansionTokens, r.IndirectionTokens)
	}
}

func TestCompare_MultipleCatalogsAggregate(t *testing.T) {
	a := catalog.GenerateSynthetic(10)
	b := catalog.GenerateSynthetic(15)
	r := testComparator().Compare("combined", []catalog.Catalog{a, b})
	if r.ServiceCount != 2 {
		t.Errorf("expected 2 services, got %d", r.ServiceCount)
	}
	if r.TotalToolCount != 25 {
		t.Errorf("expected 25 tools across services, got %d", r.TotalToolCount)
	}
}

// --- Pricing Tests ---

func TestPricing_Defaults(t *testing.T) {
	p := DefaultPricing()
	if p.PricePerMillionTokens != 3.0 || p.MonthlyRequestsPerUser != 1000 || p.AvgTokensPerOperation != 140 {
		t.Errorf("unexpected defaults: %+v", p)
	}
}

func TestPricing_CostScalesLinearly(t *testing.T) {
	p := DefaultPricing()
	doubled := p
	doubled.MonthlyRequestsPerUser *= 2

	saved := 12345
	if got, want := doubled.CostPerUserPerMonth(saved), p.CostPerUserPerMonth(saved)*2; got != want {
		t.Errorf("doubling monthly requests must double monthly cost: got %f want %f", got, want)
	}

	if got, want := p.CostPerRequest(saved), float64(saved)/1_000_000*3.0; got != want {
		t.Errorf("cost per request: got %f want %f", got, want)
	}
}

func TestPricing_NegativeSavingsYieldNegativeCost(t *testing.T) {
	p := DefaultPricing()
	if p.CostPerRequest(-1000) >= 0 {
		t.Error("negative savings must surface as negative cost, not be clamped")
	}
}

// --- Failure policy Tests ---

func TestCompare_SurvivesOneBadCatalog(t *testing.T) {
	dir := t.TempDir()
	good := `{"/a": {"get": {"operationId": "opA"}}}`
	if err := os.WriteFile(filepath.Join(dir, "good1.json"), []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}
	good2 := `{"/b": {"get": {"operationId": "opB"}}}`
	if err := os.WriteFile(filepath.Join(dir, "good2.json"), []byte(good2), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{{{"), 0o644); err != nil {
		t.Fatal(err)
	}

	catalogs, warnings, err := catalog.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}

	r := testComparator().Compare("partial", catalogs)
	r.Warnings = append(r.Warnings, warnings...)

	if r.TotalToolCount != 2 {
		t.Errorf("comparison should reflect the two loadable catalogs, got %d tools", r.TotalToolCount)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("warning should ride on the result, got %v", r.Warnings)
	}
}
