package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/oaserrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingLoader(calls *atomic.Int32, delay time.Duration) Loader {
	return Func(func(_ context.Context, location string) (*document.Node, error) {
		calls.Add(1)
		time.Sleep(delay)
		if location == "missing.yaml" {
			return nil, &oaserrors.FetchError{Location: location, Message: "not found"}
		}
		return document.NewObject(document.Member{Key: "location", Value: document.NewString(location)}), nil
	})
}

func TestCache_Memoizes(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(countingLoader(&calls, 0), 0)

	a, err := c.Load(context.Background(), "a.yaml")
	require.NoError(t, err)
	b, err := c.Load(context.Background(), "./a.yaml")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.Hits())
}

func TestCache_CollapsesConcurrentLoads(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(countingLoader(&calls, 20*time.Millisecond), 0)

	var wg sync.WaitGroup
	results := make([]*document.Node, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc, err := c.Load(context.Background(), "shared.yaml")
			assert.NoError(t, err)
			results[i] = doc
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestCache_DoesNotCacheErrors(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(countingLoader(&calls, 0), 0)

	_, err := c.Load(context.Background(), "missing.yaml")
	require.Error(t, err)
	_, err = c.Load(context.Background(), "missing.yaml")
	require.Error(t, err)

	var fetchErr *oaserrors.FetchError
	assert.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestCache_Limit(t *testing.T) {
	var calls atomic.Int32
	c := NewCache(countingLoader(&calls, 0), 2)

	_, err := c.Load(context.Background(), "a.yaml")
	require.NoError(t, err)
	_, err = c.Load(context.Background(), "b.yaml")
	require.NoError(t, err)
	_, err = c.Load(context.Background(), "c.yaml")
	assert.ErrorIs(t, err, oaserrors.ErrResourceLimit)
}
