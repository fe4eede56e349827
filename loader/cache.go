package loader

import (
	"context"
	"sync"

	"github.com/erraggy/oascombine/document"
	"github.com/erraggy/oascombine/oaserrors"
	"golang.org/x/sync/singleflight"
)

// MaxCachedDocuments is the default number of documents a Cache holds.
const MaxCachedDocuments = 500

// Cache memoizes a Loader for the lifetime of one combine invocation.
//
// Concurrent loads of the same location share a single fetch. Failures are
// not cached, but callers waiting on the same in-flight fetch all see its
// error. A Cache is meant to be created per invocation and discarded after.
type Cache struct {
	next  Loader
	limit int

	group singleflight.Group

	mu   sync.Mutex
	docs map[string]*document.Node
	hits int
}

// NewCache wraps next. A limit of zero or less means MaxCachedDocuments.
func NewCache(next Loader, limit int) *Cache {
	if limit <= 0 {
		limit = MaxCachedDocuments
	}
	return &Cache{next: next, limit: limit, docs: make(map[string]*document.Node)}
}

// Load implements Loader.
func (c *Cache) Load(ctx context.Context, location string) (*document.Node, error) {
	key := Canonical(location)

	c.mu.Lock()
	if doc, ok := c.docs[key]; ok {
		c.hits++
		c.mu.Unlock()
		return doc, nil
	}
	c.mu.Unlock()

	ch := c.group.DoChan(key, func() (any, error) {
		doc, err := c.next.Load(ctx, location)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		if len(c.docs) >= c.limit {
			return nil, &oaserrors.ResourceLimitError{
				ResourceType: "cached_documents",
				Limit:        int64(c.limit),
				Actual:       int64(len(c.docs)) + 1,
				Message:      "too many documents referenced",
			}
		}
		c.docs[key] = doc
		return doc, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*document.Node), nil
	}
}

// Len returns the number of cached documents.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

// Hits returns how many loads were answered from the cache.
func (c *Cache) Hits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

var _ Loader = (*Cache)(nil)
