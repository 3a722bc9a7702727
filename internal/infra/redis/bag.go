package redis

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"chemguess-service/internal/domain"
	"chemguess-service/internal/selector"
	"github.com/redis/go-redis/v9"
)

const bagKey = "chem:bag"

// Bag is a shuffle bag shared by every instance using the same Redis.
// The bag holds lowercased formulas: RPUSH chem:bag {formula}...; draws RPOP.
type Bag struct {
	client *redis.Client
	source selector.Source
	size   int

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBag(client *redis.Client, source selector.Source, size int) *Bag {
	if size <= 0 {
		size = selector.DefaultBagSize
	}
	return &Bag{
		client: client,
		source: source,
		size:   size,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Draw pops the next formula and resolves it against the current catalog.
// Formulas that were removed by a reload since the refill are skipped.
func (b *Bag) Draw(ctx context.Context) (domain.Compound, error) {
	pool, err := b.source.Compounds(ctx)
	if err != nil {
		return domain.Compound{}, err
	}
	if len(pool) == 0 {
		return domain.Compound{}, domain.ErrCatalogEmpty
	}
	byFormula := make(map[string]domain.Compound, len(pool))
	for _, c := range pool {
		byFormula[formulaKey(c.Formula)] = c
	}

	// one stale bag plus one fresh refill is the most we ever need to pop
	for attempt := 0; attempt <= b.size*2; attempt++ {
		formula, err := b.client.RPop(ctx, bagKey).Result()
		if errors.Is(err, redis.Nil) {
			if err := b.refill(ctx, pool); err != nil {
				return domain.Compound{}, err
			}
			continue
		}
		if err != nil {
			return domain.Compound{}, fmt.Errorf("pop bag: %w", err)
		}
		if c, ok := byFormula[formula]; ok {
			return c, nil
		}
	}
	return domain.Compound{}, domain.ErrCatalogEmpty
}

// Remaining reports how many draws are left before the next refill.
func (b *Bag) Remaining(ctx context.Context) (int64, error) {
	return b.client.LLen(ctx, bagKey).Result()
}

// Reset empties the shared bag.
func (b *Bag) Reset(ctx context.Context) error {
	return b.client.Del(ctx, bagKey).Err()
}

// refill pushes a freshly shuffled bag unless another instance already did.
func (b *Bag) refill(ctx context.Context, pool []domain.Compound) error {
	b.mu.Lock()
	shuffled := selector.Refill(pool, b.size, b.rnd)
	b.mu.Unlock()

	formulas := make([]interface{}, len(shuffled))
	for i, c := range shuffled {
		formulas[i] = formulaKey(c.Formula)
	}

	err := b.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.LLen(ctx, bagKey).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, bagKey, formulas...)
			return nil
		})
		return err
	}, bagKey)
	if errors.Is(err, redis.TxFailedErr) {
		// lost the race; the winner's bag is good enough
		return nil
	}
	if err != nil {
		return fmt.Errorf("refill bag: %w", err)
	}
	return nil
}

func formulaKey(formula string) string {
	return strings.ToLower(strings.TrimSpace(formula))
}
