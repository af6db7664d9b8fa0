// Package tokenizer estimates the context-window token cost of text payloads
// and tool definitions. Exactly one strategy is active per process; the
// default heuristic needs no resources, while the tiktoken strategy holds a
// lazily-built codec that Shutdown releases at process end.
package tokenizer

import (
	"encoding/json"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/toolgauge/toolgauge/internal/catalog"
)

// Strategy converts a text payload into a token estimate.
type Strategy interface {
	Name() string
	EstimateTokens(text string) int
	Close() error
}

var (
	mu     sync.Mutex
	active Strategy = Heuristic{}
)

// Use installs the process-wide estimation strategy. The previously active
// strategy is closed if it is being replaced.
func Use(s Strategy) {
	mu.Lock()
	defer mu.Unlock()
	if active != nil && active != s {
		_ = active.Close()
	}
	active = s
}

// Active returns the currently installed strategy.
func Active() Strategy {
	mu.Lock()
	defer mu.Unlock()
	return active
}

// Estimate returns the token estimate for text under the active strategy.
func Estimate(text string) int {
	return Active().EstimateTokens(text)
}

// Shutdown releases the active strategy's resources. Safe to call more than
// once; after Shutdown the heuristic strategy is active again so late
// callers never observe a released resource.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()
	err := active.Close()
	active = Heuristic{}
	return err
}

// EstimateTool measures a tool definition: the definition is serialized as
// pretty-printed JSON with stable key order (name, description, inputSchema)
// and fed through the active strategy.
func EstimateTool(def catalog.ToolDefinition) int {
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return 0
	}
	return Estimate(string(data))
}

// Heuristic is the default estimation strategy, biased toward structured
// JSON text where punctuation density correlates with token density.
type Heuristic struct{}

// Name returns the strategy name.
func (Heuristic) Name() string { return "heuristic" }

// Close is a no-op; the heuristic holds no resources.
func (Heuristic) Close() error { return nil }

// EstimateTokens blends a structure-aware estimate with the plain
// chars-per-token rule of thumb:
//
//	first  = ceil(structuralChars*0.5 + words*1.3)
//	second = ceil(len(text)/4)
//	result = ceil((first+second)/2)
//
// where words are counted after splitting camelCase and discarding
// non-alphanumeric characters.
func (Heuristic) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	structural := 0
	for _, r := range text {
		switch r {
		case '{', '}', '[', ']', ':', ',', '"':
			structural++
		}
	}
	words := wordCount(text)

	first := math.Ceil(float64(structural)*0.5 + float64(words)*1.3)
	second := math.Ceil(float64(len(text)) / 4)
	return int(math.Ceil((first + second) / 2))
}

// wordCount counts word-like tokens: a boundary is inserted between a
// lowercase letter and an immediately following uppercase letter, every
// non-alphanumeric character becomes whitespace, and empty fragments are
// discarded.
func wordCount(text string) int {
	var b strings.Builder
	b.Grow(len(text) + len(text)/8)
	var prev rune
	for _, r := range text {
		if unicode.IsLower(prev) && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
		prev = r
	}
	return len(strings.Fields(b.String()))
}
