package search

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/emojid/internal/search"

// Metrics holds pipeline instruments. Cache effectiveness is the number to
// watch: every search-cache hit saves an embedding call, a vector query,
// and an LLM round trip.
type Metrics struct {
	meter metric.Meter

	searches    metric.Int64Counter
	cacheHits   metric.Int64Counter
	cacheMisses metric.Int64Counter
	rerankDur   metric.Float64Histogram
	resultCount metric.Int64Histogram
}

// NewMetrics creates pipeline metrics on the global meter provider.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{meter: otel.Meter(instrumentationName)}

	var err error
	m.searches, err = m.meter.Int64Counter(
		"emojid.search.requests_total",
		metric.WithDescription("Total search pipeline executions, labeled by outcome (hit, computed, error, rate_limited)."),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		logger.Warn("failed to create searches counter", zap.Error(err))
	}

	m.cacheHits, err = m.meter.Int64Counter(
		"emojid.search.cache_hits_total",
		metric.WithDescription("Cache hits labeled by cache (search, match)."),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		logger.Warn("failed to create cache hits counter", zap.Error(err))
	}

	m.cacheMisses, err = m.meter.Int64Counter(
		"emojid.search.cache_misses_total",
		metric.WithDescription("Cache misses labeled by cache (search, match). Store failures count as misses."),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		logger.Warn("failed to create cache misses counter", zap.Error(err))
	}

	m.rerankDur, err = m.meter.Float64Histogram(
		"emojid.search.rerank_duration_seconds",
		metric.WithDescription("Wall-clock duration of the LLM rerank call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		logger.Warn("failed to create rerank duration histogram", zap.Error(err))
	}

	m.resultCount, err = m.meter.Int64Histogram(
		"emojid.search.result_count",
		metric.WithDescription("Number of emojis returned per successful search."),
		metric.WithUnit("{emoji}"),
		metric.WithExplicitBucketBoundaries(0, 5, 10, 20, 50, 100),
	)
	if err != nil {
		logger.Warn("failed to create result count histogram", zap.Error(err))
	}

	return m
}

func (m *Metrics) recordSearch(ctx context.Context, outcome string) {
	if m == nil || m.searches == nil {
		return
	}
	m.searches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) recordCacheHit(ctx context.Context, cacheName string) {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", cacheName)))
}

func (m *Metrics) recordCacheMiss(ctx context.Context, cacheName string) {
	if m == nil || m.cacheMisses == nil {
		return
	}
	m.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", cacheName)))
}

func (m *Metrics) recordRerank(ctx context.Context, seconds float64) {
	if m == nil || m.rerankDur == nil {
		return
	}
	m.rerankDur.Record(ctx, seconds)
}

func (m *Metrics) recordResults(ctx context.Context, n int) {
	if m == nil || m.resultCount == nil {
		return
	}
	m.resultCount.Record(ctx, int64(n))
}
