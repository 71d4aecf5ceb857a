package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBadger(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStore(BadgerConfig{InMemory: true}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBadgerStore_GetPut(t *testing.T) {
	ctx := context.Background()
	store := newTestBadger(t)

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "k", []byte("v"), 0))

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestBadgerStore_PutOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newTestBadger(t)

	require.NoError(t, store.Put(ctx, "k", []byte("first"), 0))
	require.NoError(t, store.Put(ctx, "k", []byte("second"), 0))

	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("second"), got)
}

func TestBadgerStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := newTestBadger(t)

	// badger rounds expiry down to whole seconds, so sub-second TTLs can
	// expire immediately. Stay well above the granularity.
	require.NoError(t, store.Put(ctx, "short", []byte("v"), 2*time.Second))
	require.NoError(t, store.Put(ctx, "forever", []byte("v"), 0))

	_, ok, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.True(t, ok, "entry should be live before ttl")

	time.Sleep(3 * time.Second)

	_, ok, err = store.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire after ttl")

	_, ok, err = store.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok, "zero ttl means no expiry")
}

func TestBadgerStore_CancelledContext(t *testing.T) {
	store := newTestBadger(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := store.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, store.Put(ctx, "k", []byte("v"), 0))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Put(ctx, "k", []byte("v"), 0))
	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, store.Put(ctx, "ttl", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	_, ok, err = store.Get(ctx, "ttl")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "match key",
			got:  MatchKey("text-embedding-3-small", 100, "cats"),
			want: "matches:text-embedding-3-small:100:cats",
		},
		{
			name: "search key",
			got:  SearchKey("gpt-4o-mini", "cats"),
			want: "search:gpt-4o-mini:cats",
		},
		{
			name: "query with spaces survives verbatim",
			got:  SearchKey("gpt-4o-mini", "two cats"),
			want: "search:gpt-4o-mini:two cats",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestKeys_Deterministic(t *testing.T) {
	assert.Equal(t,
		MatchKey("m", 100, "cats"),
		MatchKey("m", 100, "cats"),
	)
	assert.NotEqual(t,
		MatchKey("m", 100, "cats"),
		MatchKey("m", 50, "cats"),
	)
	assert.NotEqual(t,
		SearchKey("a", "cats"),
		SearchKey("b", "cats"),
	)
}
