package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"chemguess-service/internal/catalog"
	"chemguess-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CompoundLoader fetches compounds from a backing store (file, Postgres, ...).
type CompoundLoader interface {
	LoadCompounds(ctx context.Context) ([]domain.Compound, error)
}

// CatalogRepository caches compounds in Redis and falls back to a loader on cache miss.
// Compounds are stored as: HSET chem:compounds {lowercased formula} {json}
// Catalog order is stored as: RPUSH chem:compounds:order {lowercased formula}
type CatalogRepository struct {
	client *redis.Client
	loader CompoundLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

const (
	compoundsKey = "chem:compounds"
	orderKey     = "chem:compounds:order"
)

func NewCatalogRepository(client *redis.Client, loader CompoundLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if cat, ok := r.fromCache(ctx); ok {
		return cat, nil
	}

	result, err, _ := r.sf.Do("catalog", func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cat, ok := r.fromCache(ctx); ok {
			return cat, nil
		}

		compounds, err := r.loader.LoadCompounds(ctx)
		if err != nil {
			return nil, err
		}
		compounds = catalog.Sanitize(compounds, func(err error) {
			log.Printf("skipping compound: %v", err)
		})
		cat := catalog.New(compounds)
		if err := r.store(ctx, cat.All()); err != nil {
			log.Printf("cache catalog in redis: %v", err)
		}
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

// Invalidate drops the cached catalog for every instance sharing the Redis.
func (r *CatalogRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, compoundsKey, orderKey).Err()
}

func (r *CatalogRepository) fromCache(ctx context.Context) (*catalog.Catalog, bool) {
	order, err := r.client.LRange(ctx, orderKey, 0, -1).Result()
	if err != nil || len(order) == 0 {
		return nil, false
	}
	raw, err := r.client.HGetAll(ctx, compoundsKey).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	compounds, err := decodeCompounds(order, raw)
	if err != nil {
		log.Printf("decode cached catalog: %v", err)
		return nil, false
	}
	return catalog.New(compounds), true
}

func (r *CatalogRepository) store(ctx context.Context, compounds []domain.Compound) error {
	if len(compounds) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(compounds))
	order := make([]interface{}, 0, len(compounds))
	for _, c := range compounds {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", c.Formula, err)
		}
		key := formulaKey(c.Formula)
		fields[key] = data
		order = append(order, key)
	}

	ttl := r.ttlWithJitter()
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, compoundsKey, orderKey)
		pipe.HSet(ctx, compoundsKey, fields)
		pipe.RPush(ctx, orderKey, order...)
		if ttl > 0 {
			pipe.Expire(ctx, compoundsKey, ttl)
			pipe.Expire(ctx, orderKey, ttl)
		}
		return nil
	})
	return err
}

func decodeCompounds(order []string, raw map[string]string) ([]domain.Compound, error) {
	out := make([]domain.Compound, 0, len(order))
	for _, key := range order {
		data, ok := raw[key]
		if !ok {
			return nil, fmt.Errorf("compound %q missing from hash", key)
		}
		var c domain.Compound
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, fmt.Errorf("unmarshal %q: %w", key, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
