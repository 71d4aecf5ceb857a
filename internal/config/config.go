// Package config provides configuration loading for emojid.
//
// Configuration is merged from three layers, lowest to highest precedence:
// hardcoded defaults, a YAML config file, and EMOJID_-prefixed environment
// variables.
package config

import (
	"fmt"

	"github.com/fyrsmithlabs/emojid/internal/cache"
	"github.com/fyrsmithlabs/emojid/internal/embeddings"
	"github.com/fyrsmithlabs/emojid/internal/http"
	"github.com/fyrsmithlabs/emojid/internal/logging"
	"github.com/fyrsmithlabs/emojid/internal/ratelimit"
	"github.com/fyrsmithlabs/emojid/internal/rerank"
	"github.com/fyrsmithlabs/emojid/internal/search"
	"github.com/fyrsmithlabs/emojid/internal/telemetry"
	"github.com/fyrsmithlabs/emojid/internal/vectorindex"
)

// Config holds the complete emojid configuration.
type Config struct {
	Server      http.Config        `koanf:"server"`
	Logging     logging.Config     `koanf:"logging"`
	RateLimit   ratelimit.Config   `koanf:"ratelimit"`
	Cache       cache.BadgerConfig `koanf:"cache"`
	Embeddings  embeddings.Config  `koanf:"embeddings"`
	VectorIndex vectorindex.Config `koanf:"vectorindex"`
	Rerank      rerank.Config      `koanf:"rerank"`
	Search      search.Config      `koanf:"search"`
	Telemetry   telemetry.Config   `koanf:"telemetry"`

	// VocabularyPath overrides the embedded vocabulary file.
	VocabularyPath string `koanf:"vocabulary_path"`
}

// ApplyDefaults fills in zero-valued fields across all sections.
func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.RateLimit.ApplyDefaults()
	c.Rerank.ApplyDefaults()
	c.Search.ApplyDefaults()
	c.Telemetry.ApplyDefaults()
	if c.Cache.Path == "" && !c.Cache.InMemory {
		c.Cache.Path = "data/cache"
	}
	if c.Embeddings.Model == "" {
		c.Embeddings.Model = "text-embedding-3-small"
	}
	if c.Rerank.Model == "" {
		c.Rerank.Model = "gpt-4o-mini"
	}
	if c.VectorIndex.Backend == "" {
		c.VectorIndex.Backend = "chromem"
	}
	c.VectorIndex.Chromem.ApplyDefaults()
	c.VectorIndex.Qdrant.ApplyDefaults()
}

// Validate validates all configuration sections.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("ratelimit: %w", err)
	}
	if err := c.Embeddings.Validate(); err != nil {
		return fmt.Errorf("embeddings: %w", err)
	}
	if err := c.Rerank.Validate(); err != nil {
		return fmt.Errorf("rerank: %w", err)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if c.VectorIndex.Backend == "qdrant" {
		if err := c.VectorIndex.Qdrant.Validate(); err != nil {
			return fmt.Errorf("vectorindex: %w", err)
		}
	}
	return nil
}
