package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/toolgauge/toolgauge/internal/bench"
	"github.com/toolgauge/toolgauge/internal/common"
	"github.com/toolgauge/toolgauge/internal/config"
)

func staticConfig(dir string) *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Catalogs.Dir = dir
	return cfg
}

// --- Catalog directory policy Tests ---

func TestRunStatic_MissingExplicitDirFails(t *testing.T) {
	cfg := staticConfig(filepath.Join(t.TempDir(), "absent"))
	code := runStatic(cfg, bench.DefaultPricing(), common.NewSilentLogger(), "", true, true)
	if code != 1 {
		t.Fatalf("an explicitly configured missing catalog directory must fail the run, got exit %d", code)
	}
}

func TestRunStatic_MissingDefaultDirFallsBackToSynthetic(t *testing.T) {
	cfg := staticConfig(filepath.Join(t.TempDir(), "absent"))
	code := runStatic(cfg, bench.DefaultPricing(), common.NewSilentLogger(), "5", false, true)
	if code != 0 {
		t.Fatalf("the untouched default directory may be absent, got exit %d", code)
	}
}

func TestRunStatic_ExplicitDirWithCatalogs(t *testing.T) {
	dir := t.TempDir()
	doc := `{"/ping": {"get": {"operationId": "ping", "summary": "Ping"}}}`
	if err := os.WriteFile(filepath.Join(dir, "svc.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := staticConfig(dir)
	code := runStatic(cfg, bench.DefaultPricing(), common.NewSilentLogger(), "", true, true)
	if code != 0 {
		t.Fatalf("a readable explicit directory should succeed, got exit %d", code)
	}
}

// --- Scale parsing Tests ---

func TestParseScales(t *testing.T) {
	scales, err := parseScales(" 5, 50,250 ")
	if err != nil {
		t.Fatalf("parseScales failed: %v", err)
	}
	if len(scales) != 3 || scales[0] != 5 || scales[1] != 50 || scales[2] != 250 {
		t.Errorf("unexpected scales: %v", scales)
	}

	if scales, err := parseScales(""); err != nil || scales != nil {
		t.Errorf("empty input should yield no scales, got %v err=%v", scales, err)
	}
	if _, err := parseScales("5,abc"); err == nil {
		t.Error("expected error for non-numeric scale")
	}
	if _, err := parseScales("-3"); err == nil {
		t.Error("expected error for negative scale")
	}
}
