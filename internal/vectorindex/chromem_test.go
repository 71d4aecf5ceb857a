package vectorindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIndex(t *testing.T) *ChromemIndex {
	t.Helper()
	idx, err := NewChromemIndex(ChromemConfig{}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestChromemIndex_UpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.EnsureCollection(ctx, 3))
	require.NoError(t, idx.Upsert(ctx, []Point{
		{ID: "🐱", Content: "🐱: cat kitten", Vector: []float32{1, 0, 0}},
		{ID: "🐈", Content: "🐈: cat feline", Vector: []float32{0.9, 0.1, 0}},
		{ID: "🐶", Content: "🐶: dog puppy", Vector: []float32{0, 1, 0}},
	}))

	matches, err := idx.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "🐱", matches[0].ID)
	assert.Equal(t, "🐈", matches[1].ID)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}

func TestChromemIndex_TopKCappedAtCount(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Upsert(ctx, []Point{
		{ID: "🐱", Vector: []float32{1, 0}},
	}))

	matches, err := idx.Query(ctx, []float32{1, 0}, 100)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestChromemIndex_QueryMissingCollection(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.Query(context.Background(), []float32{1, 0}, 5)
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestChromemIndex_QueryEmptyVector(t *testing.T) {
	idx := newTestIndex(t)

	_, err := idx.Query(context.Background(), nil, 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestChromemIndex_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)

	require.NoError(t, idx.Upsert(ctx, []Point{{ID: "🐱", Vector: []float32{1, 0}}}))
	require.NoError(t, idx.Upsert(ctx, []Point{{ID: "🐱", Vector: []float32{0, 1}}}))

	matches, err := idx.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "🐱", matches[0].ID)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "pinecone"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_DefaultsToChromem(t *testing.T) {
	idx, err := New(Config{}, zap.NewNop())
	require.NoError(t, err)
	_, ok := idx.(*ChromemIndex)
	assert.True(t, ok)
}

func TestQdrantConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  QdrantConfig
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			config: func() QdrantConfig { c := QdrantConfig{}; c.ApplyDefaults(); return c }(),
		},
		{
			name:    "missing host",
			config:  QdrantConfig{Port: 6334, Collection: "emojis"},
			wantErr: true,
		},
		{
			name:    "bad port",
			config:  QdrantConfig{Host: "localhost", Port: 70000, Collection: "emojis"},
			wantErr: true,
		},
		{
			name:    "missing collection",
			config:  QdrantConfig{Host: "localhost", Port: 6334},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGlyphPointID_Deterministic(t *testing.T) {
	assert.Equal(t, glyphPointID("🐱"), glyphPointID("🐱"))
	assert.NotEqual(t, glyphPointID("🐱"), glyphPointID("🐶"))
}
