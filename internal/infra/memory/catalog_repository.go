package memory

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"chemguess-service/internal/catalog"
	"chemguess-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CompoundLoader fetches compounds from a backing store (file, Postgres, ...).
type CompoundLoader interface {
	LoadCompounds(ctx context.Context) ([]domain.Compound, error)
}

// CatalogRepository caches the catalog with TTL to avoid repeated loads.
type CatalogRepository struct {
	loader CompoundLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    *catalog.Catalog
	expiresAt time.Time
}

func NewCatalogRepository(loader CompoundLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if cat, ok := r.fresh(r.clock()); ok {
		return cat, nil
	}

	result, err, _ := r.sf.Do("catalog", func() (interface{}, error) {
		now := r.clock()
		if cat, ok := r.fresh(now); ok {
			return cat, nil
		}

		compounds, err := r.loader.LoadCompounds(ctx)
		if err != nil {
			return nil, err
		}
		cat := catalog.New(catalog.Sanitize(compounds, func(err error) {
			log.Printf("skipping compound: %v", err)
		}))

		expiresAt := now.Add(r.ttlWithJitter())
		r.mu.Lock()
		r.cached = cat
		r.expiresAt = expiresAt
		r.mu.Unlock()
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*catalog.Catalog), nil
}

// Compounds lets the repository feed a selector bag.
func (r *CatalogRepository) Compounds(ctx context.Context) ([]domain.Compound, error) {
	cat, err := r.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return cat.All(), nil
}

// Invalidate drops the cached catalog so the next read reloads it.
func (r *CatalogRepository) Invalidate(context.Context) error {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
	return nil
}

func (r *CatalogRepository) fresh(now time.Time) (*catalog.Catalog, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cached == nil {
		return nil, false
	}
	// a zero ttl caches until invalidated
	if r.ttl > 0 && !r.expiresAt.After(now) {
		return nil, false
	}
	return r.cached, true
}

// StaticLoader is a simple loader backed by an in-memory slice (useful for tests/demos).
type StaticLoader struct {
	compounds []domain.Compound
}

func NewStaticLoader(compounds []domain.Compound) *StaticLoader {
	return &StaticLoader{compounds: compounds}
}

func (l *StaticLoader) LoadCompounds(context.Context) ([]domain.Compound, error) {
	out := make([]domain.Compound, len(l.compounds))
	copy(out, l.compounds)
	return out, nil
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
