// Package tokencount estimates prompt and completion token usage for the
// chat models the screening pipeline calls.
package tokencount

import (
	"log/slog"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

func init() {
	// Encodings ship with the binary; nothing is fetched at runtime.
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// chat framing: per-message overhead plus the assistant reply primer.
const (
	messageOverhead = 4
	replyPrimer     = 3
)

// Usage is the token estimate for one completion.
type Usage struct {
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

// Total returns prompt plus completion tokens.
func (u Usage) Total() int { return u.PromptTokens + u.CompletionTokens }

// Counter caches one encoding per model family and is safe for concurrent use.
type Counter struct {
	mu    sync.RWMutex
	cache map[string]*tiktoken.Tiktoken
}

// NewCounter creates a Counter.
func NewCounter() *Counter {
	return &Counter{cache: make(map[string]*tiktoken.Tiktoken)}
}

// Default is the process-wide Counter.
var Default = NewCounter()

func (c *Counter) encoding(model string) (*tiktoken.Tiktoken, error) {
	key := encodingModel(model)

	c.mu.RLock()
	enc, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return enc, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.cache[key]; ok {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(key)
	if err != nil {
		slog.Debug("no model encoding, using cl100k_base", slog.String("model", model), slog.Any("error", err))
		if enc, err = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE); err != nil {
			return nil, err
		}
	}
	c.cache[key] = enc
	return enc, nil
}

// encodingModel maps a router model id (vendor/name:tier) onto a tiktoken model.
// Open-weight families are approximated with the gpt-4 encoding.
func encodingModel(model string) string {
	m := strings.ToLower(strings.TrimSpace(model))
	if i := strings.LastIndex(m, "/"); i >= 0 {
		m = m[i+1:]
	}
	if i := strings.Index(m, ":"); i >= 0 {
		m = m[:i]
	}
	if strings.Contains(m, "gpt-3.5") {
		return "gpt-3.5-turbo"
	}
	return "gpt-4"
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text, model string) (int, error) {
	enc, err := c.encoding(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Estimate returns usage for a single user-message prompt and its reply.
// Encoding failures degrade to a four-characters-per-token estimate.
func (c *Counter) Estimate(model, prompt, completion string) Usage {
	u := Usage{Model: model}
	if n, err := c.Count(prompt, model); err == nil {
		u.PromptTokens = n + messageOverhead + replyPrimer
	} else {
		u.PromptTokens = len(prompt) / 4
	}
	if n, err := c.Count(completion, model); err == nil {
		u.CompletionTokens = n
	} else {
		u.CompletionTokens = len(completion) / 4
	}
	return u
}
