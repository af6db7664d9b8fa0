package live

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/toolgauge/toolgauge/internal/bench"
	"github.com/toolgauge/toolgauge/internal/catalog"
	"github.com/toolgauge/toolgauge/internal/common"
)

// fakeSession scripts remote responses and records call order.
type fakeSession struct {
	tools     []mcp.Tool
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeSession) ListTools(_ context.Context) ([]mcp.Tool, error) {
	f.calls = append(f.calls, "list_tools")
	return f.tools, nil
}

func (f *fakeSession) CallTool(_ context.Context, name string, _ map[string]any) (string, error) {
	f.calls = append(f.calls, name)
	if err, ok := f.errs[name]; ok {
		return "", err
	}
	return f.responses[name], nil
}

func (f *fakeSession) Close() error { return nil }

func metaMCPTools() []mcp.Tool {
	var tools []mcp.Tool
	for _, def := range catalog.IndirectionTools() {
		tools = append(tools, mcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: mcp.ToolInputSchema{Type: "object"},
		})
	}
	return tools
}

func newFake() *fakeSession {
	return &fakeSession{
		tools: metaMCPTools(),
		responses: map[string]string{
			catalog.MetaListServices: `[{"name": "crm", "operations": 120}, {"name": "billing", "operations": 80}]`,
			catalog.MetaSearchOps:    `[{"name": "listCustomers", "description": "List customers"}, {"name": "getCustomer", "description": "Fetch one customer"}]`,
			catalog.MetaDescribeOps:  `[{"name": "listCustomers", "inputSchema": {"type": "object"}}]`,
		},
	}
}

// --- Measurer Tests ---

func TestRun_SequentialWorkflow(t *testing.T) {
	fake := newFake()
	m := NewMeasurer(fake, bench.DefaultPricing(), common.NewSilentLogger())

	result, err := m.Run(context.Background(), "http://example.test/mcp")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"list_tools", catalog.MetaListServices, catalog.MetaSearchOps, catalog.MetaDescribeOps}
	if len(fake.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, fake.calls)
	}
	for i := range want {
		if fake.calls[i] != want[i] {
			t.Fatalf("call %d: got %q, want %q (order is load-bearing)", i, fake.calls[i], want[i])
		}
	}

	if result.ServiceCount != 2 {
		t.Errorf("expected 2 services from discovery, got %d", result.ServiceCount)
	}
	if result.OperationCount != 200 {
		t.Errorf("expected 200 operations from discovery, got %d", result.OperationCount)
	}
	if result.EstimatedExpansionTokens != 200*140 {
		t.Errorf("expansion estimate should be opCount x avg: got %d", result.EstimatedExpansionTokens)
	}
	if result.SearchTokens <= 0 || result.DescribeTokens <= 0 || result.DiscoveryTokens <= 0 {
		t.Errorf("response payloads should be measured: %+v", result)
	}
	wantFair := bench.FairIndirection(result.IndirectionTokens, result.SearchTokens, result.DescribeTokens)
	if result.FairIndirectionTokens != wantFair {
		t.Errorf("fair total mismatch: got %d want %d", result.FairIndirectionTokens, wantFair)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestRun_SearchFailureIsFatal(t *testing.T) {
	fake := newFake()
	fake.errs = map[string]error{catalog.MetaSearchOps: &RemoteError{Code: -32602, Message: "bad query"}}

	m := NewMeasurer(fake, bench.DefaultPricing(), common.NewSilentLogger())
	_, err := m.Run(context.Background(), "http://example.test/mcp")
	if err == nil {
		t.Fatal("expected search failure to fail the run")
	}
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError to surface verbatim, got %v", err)
	}
	if remote.Code != -32602 || remote.Message != "bad query" {
		t.Errorf("remote code/message must pass through unchanged: %+v", remote)
	}
}

func TestRun_DiscoveryFailureDegrades(t *testing.T) {
	fake := newFake()
	fake.errs = map[string]error{catalog.MetaListServices: errors.New("boom")}

	m := NewMeasurer(fake, bench.DefaultPricing(), common.NewSilentLogger())
	result, err := m.Run(context.Background(), "http://example.test/mcp")
	if err != nil {
		t.Fatalf("discovery failure should degrade, not fail: %v", err)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for the failed discovery call")
	}
	// Without discovery counts the listed tool count stands in.
	if result.OperationCount != len(fake.tools) {
		t.Errorf("expected fallback operation count %d, got %d", len(fake.tools), result.OperationCount)
	}
	// The assumed single service must be flagged, not presented as measured.
	if result.ServiceCount != 1 {
		t.Errorf("expected assumed service count 1, got %d", result.ServiceCount)
	}
	assumed := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "assuming one service") {
			assumed = true
		}
	}
	if !assumed {
		t.Errorf("expected a warning about the assumed service count, got %v", result.Warnings)
	}
}

func TestRun_UnparseableSearchSkipsDescribe(t *testing.T) {
	fake := newFake()
	fake.responses[catalog.MetaSearchOps] = "plain text, nothing structured"

	m := NewMeasurer(fake, bench.DefaultPricing(), common.NewSilentLogger())
	result, err := m.Run(context.Background(), "http://example.test/mcp")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, call := range fake.calls {
		if call == catalog.MetaDescribeOps {
			t.Error("describe must be skipped when no names can be extracted")
		}
	}
	if result.DescribeTokens != 0 {
		t.Errorf("expected 0 describe tokens, got %d", result.DescribeTokens)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about the unparseable search response")
	}
}

// --- Parsing Tests ---

func TestParseOperationNames(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"array of objects", `[{"name": "a"}, {"name": "b"}]`, 2},
		{"wrapped results", `{"results": [{"name": "a"}]}`, 1},
		{"bare strings", `["a", "b", "c"]`, 3},
		{"limit applies", `["a", "b", "c", "d", "e", "f", "g"]`, 5},
		{"garbage", `not json`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseOperationNames(tt.text, 5); len(got) != tt.want {
				t.Errorf("got %v, want %d names", got, tt.want)
			}
		})
	}
}

func TestParseDiscovery(t *testing.T) {
	services, ops := parseDiscovery(`{"services": [{"name": "x", "operation_count": 7}]}`)
	if services != 1 || ops != 7 {
		t.Errorf("wrapped shape: got services=%d ops=%d", services, ops)
	}
	services, ops = parseDiscovery("nope")
	if services != 0 || ops != 0 {
		t.Errorf("garbage should yield zeros, got %d/%d", services, ops)
	}
}

// --- Dial Tests ---

func TestDial_RequiresCredential(t *testing.T) {
	_, err := Dial(context.Background(), "http://example.test/mcp", "", common.NewSilentLogger())
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestDial_RequiresServerURL(t *testing.T) {
	if _, err := Dial(context.Background(), "", "tok", common.NewSilentLogger()); err == nil {
		t.Fatal("expected error for empty server URL")
	}
}
