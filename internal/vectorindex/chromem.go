package vectorindex

import (
	"context"
	"fmt"
	"os"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"
)

// ChromemConfig holds configuration for the embedded chromem-go backend.
type ChromemConfig struct {
	// Path is the directory for the persistent snapshot. Empty keeps the
	// index in memory only (tests).
	Path string `koanf:"path"`

	// Collection is the emoji collection name.
	Collection string `koanf:"collection"`

	// Compress enables gzip compression of the snapshot.
	Compress bool `koanf:"compress"`
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Collection == "" {
		c.Collection = "emojis"
	}
}

// ChromemIndex implements Index on chromem-go, an embedded vector database.
// All vectors are pre-computed, so the collection's embedding function is
// never invoked.
type ChromemIndex struct {
	db     *chromem.DB
	config ChromemConfig
	logger *zap.Logger
}

// NewChromemIndex opens (or creates) the embedded index.
func NewChromemIndex(cfg ChromemConfig, logger *zap.Logger) (*ChromemIndex, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()

	var db *chromem.DB
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("creating index directory %s: %w", cfg.Path, err)
		}
		var err error
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("opening chromem at %s: %w", cfg.Path, err)
		}
	}

	logger.Info("chromem index opened",
		zap.String("path", cfg.Path),
		zap.String("collection", cfg.Collection),
	)

	return &ChromemIndex{db: db, config: cfg, logger: logger}, nil
}

// vectorOnlyEmbedding guards against accidental text queries; every path in
// this package supplies pre-computed vectors.
func vectorOnlyEmbedding(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("index is vector-only; embed before querying")
}

// Query returns up to topK nearest neighbors for the vector.
func (c *ChromemIndex) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if len(vector) == 0 {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", ErrInvalidConfig, topK)
	}

	collection := c.db.GetCollection(c.config.Collection, vectorOnlyEmbedding)
	if collection == nil {
		return nil, ErrCollectionNotFound
	}

	// chromem requires nResults <= document count.
	count := collection.Count()
	if count == 0 {
		return []Match{}, nil
	}
	if topK > count {
		topK = count
	}

	results, err := collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", c.config.Collection, err)
	}

	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{ID: r.ID, Score: r.Similarity}
	}
	return matches, nil
}

// Upsert writes pre-embedded points.
func (c *ChromemIndex) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return fmt.Errorf("points cannot be empty")
	}

	collection, err := c.db.GetOrCreateCollection(c.config.Collection, nil, vectorOnlyEmbedding)
	if err != nil {
		return fmt.Errorf("getting collection %s: %w", c.config.Collection, err)
	}

	docs := make([]chromem.Document, len(points))
	for i, p := range points {
		docs[i] = chromem.Document{
			ID:        p.ID,
			Content:   p.Content,
			Embedding: p.Vector,
		}
	}

	// Concurrency of 1: embeddings are already computed.
	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding %d documents: %w", len(docs), err)
	}

	c.logger.Debug("upserted points",
		zap.String("collection", c.config.Collection),
		zap.Int("count", len(points)),
	)
	return nil
}

// EnsureCollection creates the emoji collection if missing. chromem carries
// no fixed vector size; the parameter is accepted for interface parity.
func (c *ChromemIndex) EnsureCollection(_ context.Context, _ int) error {
	_, err := c.db.GetOrCreateCollection(c.config.Collection, nil, vectorOnlyEmbedding)
	if err != nil {
		return fmt.Errorf("getting collection %s: %w", c.config.Collection, err)
	}
	return nil
}

// Close is a no-op; chromem persists on write.
func (c *ChromemIndex) Close() error {
	return nil
}
