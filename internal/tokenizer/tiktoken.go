package tokenizer

import (
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// Tiktoken is the exact-counting strategy: it encodes text against a fixed
// GPT-style vocabulary and returns the real token count. The codec is built
// lazily on first use (guarded, so concurrent first-use constructs it once)
// and released by Close.
type Tiktoken struct {
	model string

	once   sync.Once
	mu     sync.Mutex
	codec  tokenizer.Codec
	err    error
	closed bool
}

// NewTiktoken returns a tiktoken strategy for the given model name.
// The vocabulary is not loaded until the first estimate.
func NewTiktoken(model string) *Tiktoken {
	return &Tiktoken{model: model}
}

// Name returns the strategy name.
func (t *Tiktoken) Name() string { return "tiktoken" }

// EstimateTokens returns the exact token count for text. If the vocabulary
// cannot be loaded, or the strategy has been closed, the heuristic estimate
// is returned instead so callers never fail on a counting error.
func (t *Tiktoken) EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	codec := t.activeCodec()
	if codec == nil {
		return Heuristic{}.EstimateTokens(text)
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return Heuristic{}.EstimateTokens(text)
	}
	return len(ids)
}

// Close releases the codec. Idempotent; later estimates fall back to the
// heuristic rather than re-creating the resource.
func (t *Tiktoken) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.codec = nil
	return nil
}

// activeCodec builds the codec on first use and returns it, or nil when the
// strategy is closed or the vocabulary failed to load.
func (t *Tiktoken) activeCodec() tokenizer.Codec {
	t.once.Do(func() {
		codec, err := tokenizer.Get(encodingForModel(t.model))
		t.mu.Lock()
		defer t.mu.Unlock()
		if !t.closed {
			t.codec, t.err = codec, err
		}
	})
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.err != nil {
		return nil
	}
	return t.codec
}

// encodingForModel maps a model name to its tokenizer encoding.
// Newer OpenAI-family models use o200k_base; the gpt-4/gpt-3.5 era uses
// cl100k_base. Unknown models default to o200k_base.
func encodingForModel(model string) tokenizer.Encoding {
	model = strings.ToLower(model)
	switch {
	case strings.HasPrefix(model, "gpt-4o"),
		strings.HasPrefix(model, "gpt-4.1"),
		strings.HasPrefix(model, "gpt-5"),
		strings.HasPrefix(model, "o1"),
		strings.HasPrefix(model, "o3"),
		strings.HasPrefix(model, "o4"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4"),
		strings.HasPrefix(model, "gpt-3.5"),
		strings.HasPrefix(model, "text-embedding"):
		return tokenizer.Cl100kBase
	default:
		return tokenizer.O200kBase
	}
}
