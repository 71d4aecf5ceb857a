// Package rerank filters and orders candidate emojis against a query using
// an LLM. The model is constrained to choose only from the candidate list
// and to answer in a fixed JSON shape, but its output is still untrusted:
// callers must sanitize before caching or returning anything.
package rerank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

var (
	// ErrInvalidConfig indicates invalid reranker configuration.
	ErrInvalidConfig = errors.New("invalid rerank configuration")

	// ErrNoCandidates indicates an empty candidate list.
	ErrNoCandidates = errors.New("no candidates to rerank")

	// ErrEmptyResponse indicates the model returned no choices.
	ErrEmptyResponse = errors.New("model returned no choices")
)

// Candidate is an emoji glyph with its keyword tags, as surfaced by vector
// similarity.
type Candidate struct {
	ID       string   `json:"id"`
	Keywords []string `json:"keywords"`
}

// Reranker filters and orders candidates against a query.
type Reranker interface {
	// Rerank returns emoji glyphs ordered most-to-least relevant, drawn
	// from the candidate list.
	Rerank(ctx context.Context, query string, candidates []Candidate) ([]string, error)

	// Model returns the rerank model identifier (a search-cache key
	// component).
	Model() string
}

// Config holds configuration for the LLM reranker.
type Config struct {
	// BaseURL is the OpenAI-compatible endpoint. Empty uses the default
	// OpenAI API host.
	BaseURL string `koanf:"base_url"`

	// Model is the chat model identifier.
	Model string `koanf:"model"`

	// APIKey authenticates against the endpoint.
	APIKey string `koanf:"api_key"`

	// Timeout is the hard wall-clock bound on one rerank call. A timed-out
	// call is a failure, never a partial success.
	Timeout time.Duration `koanf:"timeout"`

	// Temperature biases toward deterministic output. Cost/latency knob,
	// not a correctness one.
	Temperature float64 `koanf:"temperature"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Temperature == 0 {
		c.Temperature = 0.1
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// LLMReranker implements Reranker on an OpenAI-compatible chat endpoint.
type LLMReranker struct {
	client llms.Model
	config Config
	logger *zap.Logger
}

// NewLLMReranker creates a reranker from config.
func NewLLMReranker(cfg Config, logger *zap.Logger) (*LLMReranker, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []openai.Option{
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	} else {
		opts = append(opts, openai.WithToken("none"))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	return &LLMReranker{client: client, config: cfg, logger: logger}, nil
}

// NewLLMRerankerWithClient wires an explicit model client. Tests inject
// fakes here; cmd wiring injects the constructed provider client.
func NewLLMRerankerWithClient(client llms.Model, cfg Config, logger *zap.Logger) (*LLMReranker, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: client required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMReranker{client: client, config: cfg, logger: logger}, nil
}

// rerankResponse is the JSON shape the model is instructed to produce.
type rerankResponse struct {
	Emojis []string `json:"emojis"`
}

// Rerank asks the model for a filtered, ordered glyph list. The call is
// bounded by the configured timeout.
func (r *LLMReranker) Rerank(ctx context.Context, query string, candidates []Candidate) ([]string, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(userPrompt(query, candidates))},
		},
	}

	start := time.Now()
	response, err := r.client.GenerateContent(ctx, content,
		llms.WithTemperature(r.config.Temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		r.logger.Warn("rerank call failed",
			zap.String("model", r.config.Model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("rerank call: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	parsed, err := parseResponse(response.Choices[0].Content)
	if err != nil {
		r.logger.Warn("rerank response unparseable",
			zap.String("model", r.config.Model),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Debug("rerank complete",
		zap.String("model", r.config.Model),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(parsed)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return parsed, nil
}

// Model returns the rerank model identifier.
func (r *LLMReranker) Model() string {
	return r.config.Model
}

// parseResponse extracts the glyph list from the model's JSON answer.
// Markdown code fences are stripped first; some models wrap JSON-mode
// output anyway.
func parseResponse(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var resp rerankResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("parsing rerank response: %w", err)
	}
	return resp.Emojis, nil
}
