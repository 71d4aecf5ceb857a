package vectorindex

import (
	"fmt"

	"go.uber.org/zap"
)

// Backend names accepted in configuration.
const (
	BackendChromem = "chromem"
	BackendQdrant  = "qdrant"
)

// Config selects and configures an index backend.
type Config struct {
	// Backend is "chromem" (embedded, default) or "qdrant".
	Backend string `koanf:"backend"`

	Chromem ChromemConfig `koanf:"chromem"`
	Qdrant  QdrantConfig  `koanf:"qdrant"`
}

// New creates the configured index backend.
func New(cfg Config, logger *zap.Logger) (Index, error) {
	switch cfg.Backend {
	case BackendChromem, "":
		return NewChromemIndex(cfg.Chromem, logger)
	case BackendQdrant:
		return NewQdrantIndex(cfg.Qdrant, logger)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, cfg.Backend)
	}
}
