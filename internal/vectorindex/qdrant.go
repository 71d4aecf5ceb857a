package vectorindex

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// QdrantConfig holds configuration for the Qdrant gRPC backend.
type QdrantConfig struct {
	// Host is the Qdrant server hostname or IP address.
	Host string `koanf:"host"`

	// Port is the Qdrant gRPC port (6334, not the 6333 REST port).
	Port int `koanf:"port"`

	// Collection is the emoji collection name.
	Collection string `koanf:"collection"`

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool `koanf:"use_tls"`

	// APIKey is the optional API key. Empty for local development.
	APIKey string `koanf:"api_key"`

	// DialTimeout bounds connection establishment.
	DialTimeout time.Duration `koanf:"dial_timeout"`
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Collection == "" {
		c.Collection = "emojis"
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
}

// Validate validates the configuration.
func (c QdrantConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("%w: host required", ErrInvalidConfig)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: invalid port %d", ErrInvalidConfig, c.Port)
	}
	if c.Collection == "" {
		return fmt.Errorf("%w: collection required", ErrInvalidConfig)
	}
	return nil
}

// QdrantIndex implements Index against a Qdrant server.
type QdrantIndex struct {
	client *qdrant.Client
	config QdrantConfig
	logger *zap.Logger
}

// NewQdrantIndex connects to Qdrant and verifies the connection.
func NewQdrantIndex(cfg QdrantConfig, logger *zap.Logger) (*QdrantIndex, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	qcfg := &qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		UseTLS: cfg.UseTLS,
		APIKey: cfg.APIKey,
	}
	if !cfg.UseTLS {
		qcfg.GrpcOptions = append(qcfg.GrpcOptions,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
	}

	client, err := qdrant.NewClient(qcfg)
	if err != nil {
		return nil, fmt.Errorf("creating qdrant client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if _, err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("qdrant health check: %w", err)
	}

	logger.Info("qdrant connection established",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("collection", cfg.Collection),
	)

	return &QdrantIndex{client: client, config: cfg, logger: logger}, nil
}

// Query returns up to topK nearest neighbors for the vector.
func (q *QdrantIndex) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if len(vector) == 0 {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", ErrInvalidConfig, topK)
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.config.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", q.config.Collection, err)
	}

	matches := make([]Match, 0, len(points))
	for _, p := range points {
		m := Match{Score: p.Score}
		if p.Payload != nil {
			if v, ok := p.Payload["id"]; ok {
				if s, ok := v.Kind.(*qdrant.Value_StringValue); ok {
					m.ID = s.StringValue
				}
			}
		}
		if m.ID == "" {
			// Point without a glyph payload is unusable downstream.
			continue
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Upsert writes pre-embedded points. Point IDs are derived deterministically
// from the glyph so rebuilding the index overwrites in place.
func (q *QdrantIndex) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return fmt.Errorf("points cannot be empty")
	}

	qpoints := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		qpoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(glyphPointID(p.ID)),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: map[string]*qdrant.Value{
				"id":      {Kind: &qdrant.Value_StringValue{StringValue: p.ID}},
				"content": {Kind: &qdrant.Value_StringValue{StringValue: p.Content}},
			},
		}
	}

	if _, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.config.Collection,
		Points:         qpoints,
	}); err != nil {
		return fmt.Errorf("upserting %d points to %s: %w", len(points), q.config.Collection, err)
	}

	q.logger.Debug("upserted points",
		zap.String("collection", q.config.Collection),
		zap.Int("count", len(points)),
	)
	return nil
}

// EnsureCollection creates the emoji collection if missing.
func (q *QdrantIndex) EnsureCollection(ctx context.Context, vectorSize int) error {
	exists, err := q.client.CollectionExists(ctx, q.config.Collection)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", q.config.Collection, err)
	}
	if exists {
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.config.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", q.config.Collection, err)
	}

	q.logger.Info("created collection",
		zap.String("collection", q.config.Collection),
		zap.Int("vector_size", vectorSize),
	)
	return nil
}

// Close closes the gRPC connection.
func (q *QdrantIndex) Close() error {
	return q.client.Close()
}

// glyphPointID maps a glyph to a stable numeric Qdrant point ID. The glyph
// itself travels in the payload.
func glyphPointID(glyph string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(glyph))
	return h.Sum64()
}
