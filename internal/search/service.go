package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/emojid/internal/cache"
	"github.com/fyrsmithlabs/emojid/internal/emoji"
	"github.com/fyrsmithlabs/emojid/internal/rerank"
	"github.com/fyrsmithlabs/emojid/internal/vectorindex"
)

// RateLimiter gates requests per client key.
type RateLimiter interface {
	Allow(key string) bool
}

// Embedder turns a query into a vector. Model identifies the embedding
// model, a match-cache key component.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Index retrieves nearest-neighbor emoji glyphs for a query vector.
type Index interface {
	Query(ctx context.Context, vector []float32, topK int) ([]vectorindex.Match, error)
}

// Config holds pipeline tuning knobs.
type Config struct {
	// TopK is the number of vector candidates fetched per query.
	TopK int `koanf:"top_k"`

	// MinResultsToCache gates search-cache writes: results shorter than
	// this are recomputed on the next request rather than pinned.
	MinResultsToCache int `koanf:"min_results_to_cache"`

	// SearchCacheTTL bounds how long a final result stays cached.
	SearchCacheTTL time.Duration `koanf:"search_cache_ttl"`

	// UpstreamTimeout bounds each embedding and vector index call.
	UpstreamTimeout time.Duration `koanf:"upstream_timeout"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.TopK == 0 {
		c.TopK = 100
	}
	if c.MinResultsToCache == 0 {
		c.MinResultsToCache = 10
	}
	if c.SearchCacheTTL == 0 {
		c.SearchCacheTTL = 7 * 24 * time.Hour
	}
	if c.UpstreamTimeout == 0 {
		c.UpstreamTimeout = 10 * time.Second
	}
}

// Validate checks configuration consistency.
func (c Config) Validate() error {
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.MinResultsToCache < 0 {
		return fmt.Errorf("min_results_to_cache must not be negative, got %d", c.MinResultsToCache)
	}
	if c.SearchCacheTTL < 0 {
		return fmt.Errorf("search_cache_ttl must not be negative, got %v", c.SearchCacheTTL)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream_timeout must be positive, got %v", c.UpstreamTimeout)
	}
	return nil
}

// Service runs the retrieval and rerank pipeline. Cache store failures
// never fail a search: a broken store degrades to recomputation.
type Service struct {
	cfg      Config
	limiter  RateLimiter
	store    cache.Store
	embedder Embedder
	index    Index
	reranker rerank.Reranker
	vocab    emoji.Vocabulary
	logger   *zap.Logger
	metrics  *Metrics
}

// NewService wires the pipeline. All dependencies are required except
// metrics, which may be nil.
func NewService(cfg Config, limiter RateLimiter, store cache.Store, embedder Embedder, index Index, reranker rerank.Reranker, vocab emoji.Vocabulary, logger *zap.Logger, metrics *Metrics) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if index == nil {
		return nil, fmt.Errorf("vector index is required")
	}
	if reranker == nil {
		return nil, fmt.Errorf("reranker is required")
	}
	if len(vocab) == 0 {
		return nil, fmt.Errorf("vocabulary is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:      cfg,
		limiter:  limiter,
		store:    store,
		embedder: embedder,
		index:    index,
		reranker: reranker,
		vocab:    vocab,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

// Search executes the full pipeline for one request and returns emoji
// glyphs ordered most-to-least relevant. The slice is never nil.
func (s *Service) Search(ctx context.Context, clientKey, rawQuery string) ([]string, error) {
	if !s.limiter.Allow(clientKey) {
		s.metrics.recordSearch(ctx, "rate_limited")
		return nil, ErrRateLimited
	}

	query := NormalizeQuery(rawQuery)
	if query == "" {
		s.metrics.recordSearch(ctx, "error")
		return nil, ErrInvalidQuery
	}

	searchKey := cache.SearchKey(s.reranker.Model(), query)
	if cached, ok := s.getCachedResult(ctx, searchKey); ok {
		s.metrics.recordSearch(ctx, "hit")
		s.metrics.recordResults(ctx, len(cached))
		return cached, nil
	}

	candidates, err := s.candidates(ctx, query)
	if err != nil {
		s.metrics.recordSearch(ctx, "error")
		return nil, err
	}

	start := time.Now()
	ranked, err := s.reranker.Rerank(ctx, query, candidates)
	s.metrics.recordRerank(ctx, time.Since(start).Seconds())
	if err != nil {
		s.metrics.recordSearch(ctx, "error")
		return nil, fmt.Errorf("reranking %q: %w", query, err)
	}

	result := s.validate(ranked, candidates)

	if len(result) >= s.cfg.MinResultsToCache {
		s.putCached(ctx, searchKey, result, s.cfg.SearchCacheTTL)
	} else {
		s.logger.Debug("result below cache threshold, not caching",
			zap.String("query", query),
			zap.Int("results", len(result)),
			zap.Int("threshold", s.cfg.MinResultsToCache))
	}

	s.metrics.recordSearch(ctx, "computed")
	s.metrics.recordResults(ctx, len(result))
	return result, nil
}

// getCachedResult reads the search cache. A stored empty list counts as a
// miss so transient empty results never stick.
func (s *Service) getCachedResult(ctx context.Context, key string) ([]string, bool) {
	data, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.Warn("search cache read failed", zap.String("key", key), zap.Error(err))
		s.metrics.recordCacheMiss(ctx, "search")
		return nil, false
	}
	if !found {
		s.metrics.recordCacheMiss(ctx, "search")
		return nil, false
	}
	var result []string
	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.Warn("corrupt search cache entry", zap.String("key", key), zap.Error(err))
		s.metrics.recordCacheMiss(ctx, "search")
		return nil, false
	}
	if len(result) == 0 {
		s.metrics.recordCacheMiss(ctx, "search")
		return nil, false
	}
	s.metrics.recordCacheHit(ctx, "search")
	return result, true
}

// candidates returns the enriched candidate list for a normalized query,
// from the match cache when possible, otherwise by embedding the query and
// querying the vector index. Freshly computed candidates are always cached,
// with no expiry: the vocabulary and embedding space only change with a
// reindex, and the model name in the key fences off stale entries.
func (s *Service) candidates(ctx context.Context, query string) ([]rerank.Candidate, error) {
	matchKey := cache.MatchKey(s.embedder.Model(), s.cfg.TopK, query)

	data, found, err := s.store.Get(ctx, matchKey)
	if err != nil {
		s.logger.Warn("match cache read failed", zap.String("key", matchKey), zap.Error(err))
	} else if found {
		var cached []rerank.Candidate
		if err := json.Unmarshal(data, &cached); err != nil {
			s.logger.Warn("corrupt match cache entry", zap.String("key", matchKey), zap.Error(err))
		} else if len(cached) > 0 {
			s.metrics.recordCacheHit(ctx, "match")
			return cached, nil
		}
	}
	s.metrics.recordCacheMiss(ctx, "match")

	embedCtx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	vector, err := s.embedder.EmbedQuery(embedCtx, query)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("embedding query %q: %w", query, err)
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	matches, err := s.index.Query(queryCtx, vector, s.cfg.TopK)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("querying vector index: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no candidates for query %q: %w", query, ErrNoMatches)
	}

	candidates := make([]rerank.Candidate, 0, len(matches))
	for _, m := range matches {
		candidates = append(candidates, rerank.Candidate{
			ID:       m.ID,
			Keywords: s.vocab.Keywords(m.ID),
		})
	}

	s.putCached(ctx, matchKey, candidates, 0)
	return candidates, nil
}

// validate sanitizes the reranker output and drops anything the LLM
// introduced that was not in the candidate set.
func (s *Service) validate(ranked []string, candidates []rerank.Candidate) []string {
	allowed := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		allowed[emoji.NormalizationKey(c.ID)] = struct{}{}
	}

	sanitized := emoji.Sanitize(ranked)
	result := make([]string, 0, len(sanitized))
	for _, glyph := range sanitized {
		if _, ok := allowed[emoji.NormalizationKey(glyph)]; !ok {
			s.logger.Debug("dropping glyph outside candidate set", zap.String("glyph", glyph))
			continue
		}
		result = append(result, glyph)
	}
	return result
}

func (s *Service) putCached(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("marshaling cache entry failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.Put(ctx, key, data, ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
