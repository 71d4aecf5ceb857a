// Package embeddings turns query text into vectors for nearest-neighbor
// search. The provider and the offline index build must share one model
// identifier so queries and stored vectors live in the same embedding space;
// that identifier is also a component of the match-cache key.
package embeddings

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

var (
	// ErrEmptyInput indicates empty input text.
	ErrEmptyInput = errors.New("empty input text")

	// ErrInvalidConfig indicates invalid provider configuration.
	ErrInvalidConfig = errors.New("invalid embeddings configuration")
)

// Provider generates vector embeddings from text.
type Provider interface {
	// EmbedQuery generates an embedding for a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments generates embeddings for a batch of texts. Used by the
	// offline index build.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the embedding model identifier.
	Model() string
}

// Config holds configuration for the OpenAI-compatible provider.
type Config struct {
	// BaseURL is the OpenAI-compatible endpoint. Empty uses the default
	// OpenAI API host.
	BaseURL string `koanf:"base_url"`

	// Model is the embedding model identifier, e.g. "text-embedding-3-small".
	Model string `koanf:"model"`

	// APIKey authenticates against the endpoint. Local services that skip
	// auth can leave it empty.
	APIKey string `koanf:"api_key"`
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// OpenAIProvider implements Provider against any OpenAI-compatible
// embeddings endpoint via langchaingo.
type OpenAIProvider struct {
	embedder embeddings.Embedder
	model    string
	logger   *zap.Logger
}

// NewOpenAIProvider creates a provider from config.
func NewOpenAIProvider(cfg Config, logger *zap.Logger) (*OpenAIProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []openai.Option{
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	} else {
		// langchaingo requires a token even for endpoints that ignore it.
		opts = append(opts, openai.WithToken("none"))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	return &OpenAIProvider{
		embedder: embedder,
		model:    cfg.Model,
		logger:   logger,
	}, nil
}

// EmbedQuery generates an embedding for a single query string.
func (p *OpenAIProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}

	vector, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		p.logger.Warn("embedding query failed", zap.Error(err))
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return vector, nil
}

// EmbedDocuments generates embeddings for a batch of texts.
func (p *OpenAIProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		p.logger.Warn("embedding documents failed",
			zap.Int("count", len(texts)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("embedding %d documents: %w", len(texts), err)
	}
	return vectors, nil
}

// Model returns the embedding model identifier.
func (p *OpenAIProvider) Model() string {
	return p.model
}
