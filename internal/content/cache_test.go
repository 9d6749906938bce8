package content

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheStartsEmptyAndLoadsWholesale(t *testing.T) {
	be := newFakeBackend()
	client := NewClient(be, Stats)
	cache := NewCache(client)
	ctx := context.Background()

	assert.Empty(t, cache.Items())
	assert.Equal(t, 0, cache.Len())

	_, err := client.Insert(ctx, Stat{Value: "120+", Label: "Projects delivered", SortOrder: 1})
	require.NoError(t, err)

	// Nothing lands in the cache until a reload is asked for.
	assert.Empty(t, cache.Items())

	require.NoError(t, cache.Reload(ctx))
	require.Equal(t, 1, cache.Len())
	assert.Equal(t, "120+", cache.Items()[0].Value)
}

func TestCacheKeepsStaleListOnReloadFailure(t *testing.T) {
	be := newFakeBackend()
	client := NewClient(be, Stats)
	cache := NewCache(client)
	ctx := context.Background()

	_, err := client.Insert(ctx, Stat{Value: "10", Label: "Years", SortOrder: 1})
	require.NoError(t, err)
	require.NoError(t, cache.Reload(ctx))

	be.fail = errors.New("connection reset")
	err = cache.Reload(ctx)
	require.Error(t, err)

	// Stale but available.
	require.Equal(t, 1, cache.Len())
	assert.Equal(t, "10", cache.Items()[0].Value)
}

func TestCacheDiscardsResultForDoneContext(t *testing.T) {
	be := newFakeBackend()
	client := NewClient(be, Stats)
	cache := NewCache(client)
	ctx := context.Background()

	_, err := client.Insert(ctx, Stat{Value: "10", Label: "Years", SortOrder: 1})
	require.NoError(t, err)
	require.NoError(t, cache.Reload(ctx))

	_, err = client.Insert(ctx, Stat{Value: "25", Label: "Clients", SortOrder: 2})
	require.NoError(t, err)

	// The owning view went away while the request was in flight: the fetched
	// list must not be applied.
	canceled, cancel := context.WithCancel(ctx)
	cancel()
	err = cache.Reload(canceled)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, cache.Len())

	require.NoError(t, cache.Reload(ctx))
	assert.Equal(t, 2, cache.Len())
}
