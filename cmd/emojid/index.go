package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/emojid/internal/config"
	"github.com/fyrsmithlabs/emojid/internal/embeddings"
	"github.com/fyrsmithlabs/emojid/internal/emoji"
	"github.com/fyrsmithlabs/emojid/internal/logging"
	"github.com/fyrsmithlabs/emojid/internal/vectorindex"
)

var indexBatchSize int

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the emoji vector index from the vocabulary",
	Long: `Embed every vocabulary entry and upsert it into the configured vector
index. Run this once before serving, and again whenever the vocabulary or the
embedding model changes.

Reindexing is idempotent: points are keyed by glyph, so existing entries are
overwritten in place.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().IntVar(&indexBatchSize, "batch-size", 64, "embeddings per upstream request")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	vocab, err := emoji.LoadVocabulary(cfg.VocabularyPath)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}

	embedder, err := embeddings.NewOpenAIProvider(cfg.Embeddings, logger)
	if err != nil {
		return fmt.Errorf("failed to create embedding provider: %w", err)
	}

	index, err := vectorindex.New(cfg.VectorIndex, logger)
	if err != nil {
		return fmt.Errorf("failed to open vector index: %w", err)
	}
	defer index.Close()

	glyphs := vocab.Glyphs()
	logger.Info("building emoji index",
		zap.Int("entries", len(glyphs)),
		zap.String("model", cfg.Embeddings.Model),
		zap.Int("batch_size", indexBatchSize))

	start := time.Now()
	indexed := 0
	for batchStart := 0; batchStart < len(glyphs); batchStart += indexBatchSize {
		batchEnd := min(batchStart+indexBatchSize, len(glyphs))
		batch := glyphs[batchStart:batchEnd]

		docs := make([]string, len(batch))
		for i, glyph := range batch {
			docs[i] = indexDocument(glyph, vocab.Keywords(glyph))
		}

		vectors, err := embedder.EmbedDocuments(ctx, docs)
		if err != nil {
			return fmt.Errorf("embedding batch at %d: %w", batchStart, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding batch at %d: got %d vectors for %d documents", batchStart, len(vectors), len(batch))
		}

		// The collection is sized from the first vector, since dimension
		// depends on the embedding model.
		if indexed == 0 {
			if err := index.EnsureCollection(ctx, len(vectors[0])); err != nil {
				return fmt.Errorf("preparing collection: %w", err)
			}
		}

		points := make([]vectorindex.Point, len(batch))
		for i, glyph := range batch {
			points[i] = vectorindex.Point{
				ID:      glyph,
				Content: docs[i],
				Vector:  vectors[i],
			}
		}
		if err := index.Upsert(ctx, points); err != nil {
			return fmt.Errorf("upserting batch at %d: %w", batchStart, err)
		}

		indexed += len(batch)
		logger.Info("indexed batch", zap.Int("indexed", indexed), zap.Int("total", len(glyphs)))
	}

	logger.Info("index build complete",
		zap.Int("entries", indexed),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// indexDocument renders the text embedded for one vocabulary entry. The
// glyph leads so identical keyword sets still embed apart.
func indexDocument(glyph string, keywords []string) string {
	return glyph + ": " + strings.Join(keywords, " ")
}
