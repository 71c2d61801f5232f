package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/saturnino-fabrica-de-software/empathia/internal/domain"
	"github.com/saturnino-fabrica-de-software/empathia/internal/metrics"
)

const galleryKey = "gallery"

// GallerySource loads the full list of enrolled employees
type GallerySource interface {
	List(ctx context.Context) ([]domain.Employee, error)
}

// GalleryCache keeps an in-memory snapshot of the gallery so that
// identifications don't reload every embedding from the store.
// Any write to employees must call Invalidate.
type GalleryCache struct {
	source  GallerySource
	cache   *gocache.Cache
	ttl     time.Duration
	metrics *metrics.Metrics

	mu         sync.Mutex
	generation uint64
}

// NewGalleryCache creates a cache over source. A ttl <= 0 disables caching
// and every Snapshot reads the source. m may be nil.
func NewGalleryCache(source GallerySource, ttl time.Duration, m *metrics.Metrics) *GalleryCache {
	return &GalleryCache{
		source:  source,
		cache:   gocache.New(ttl, 2*ttl),
		ttl:     ttl,
		metrics: m,
	}
}

// Snapshot returns the gallery in store order. The returned slice is a copy;
// the employees in it must be treated as read-only.
func (c *GalleryCache) Snapshot(ctx context.Context) ([]domain.Employee, error) {
	if c.ttl <= 0 {
		return c.load(ctx)
	}

	if cached, found := c.cache.Get(galleryKey); found {
		c.metrics.RecordCacheLookup(true)
		return cloneGallery(cached.([]domain.Employee)), nil
	}
	c.metrics.RecordCacheLookup(false)

	c.mu.Lock()
	generation := c.generation
	c.mu.Unlock()

	gallery, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	// a write that happened while loading makes this snapshot stale
	c.mu.Lock()
	if generation == c.generation {
		c.cache.Set(galleryKey, gallery, gocache.DefaultExpiration)
	}
	c.mu.Unlock()

	return cloneGallery(gallery), nil
}

// Invalidate drops the cached snapshot
func (c *GalleryCache) Invalidate() {
	c.mu.Lock()
	c.generation++
	c.cache.Delete(galleryKey)
	c.mu.Unlock()
}

func (c *GalleryCache) load(ctx context.Context) ([]domain.Employee, error) {
	gallery, err := c.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load gallery: %w", err)
	}
	return gallery, nil
}

func cloneGallery(gallery []domain.Employee) []domain.Employee {
	out := make([]domain.Employee, len(gallery))
	copy(out, gallery)
	return out
}
