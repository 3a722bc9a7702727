// Package selector draws answers so that no compound repeats within one bag.
package selector

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"chemguess-service/internal/domain"
)

// DefaultBagSize is the number of draws between full reshuffles.
const DefaultBagSize = 30

// Source supplies the full set of compounds to refill the bag from.
type Source interface {
	Compounds(ctx context.Context) ([]domain.Compound, error)
}

// Bag is a shuffle bag. A refill copies the whole catalog, shuffles it and
// keeps at most size entries; draws pop from the tail.
type Bag struct {
	source Source
	size   int

	mu  sync.Mutex
	rnd *rand.Rand
	bag []domain.Compound
}

// Option configures a Bag.
type Option func(*Bag)

// WithRand injects the random source used for shuffling.
func WithRand(rnd *rand.Rand) Option {
	return func(b *Bag) { b.rnd = rnd }
}

// WithSize overrides DefaultBagSize.
func WithSize(size int) Option {
	return func(b *Bag) {
		if size > 0 {
			b.size = size
		}
	}
}

func New(source Source, opts ...Option) *Bag {
	b := &Bag{
		source: source,
		size:   DefaultBagSize,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Draw pops the next compound, refilling the bag when it is empty.
func (b *Bag) Draw(ctx context.Context) (domain.Compound, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.bag) == 0 {
		pool, err := b.source.Compounds(ctx)
		if err != nil {
			return domain.Compound{}, err
		}
		b.bag = Refill(pool, b.size, b.rnd)
	}
	if len(b.bag) == 0 {
		return domain.Compound{}, domain.ErrCatalogEmpty
	}

	last := len(b.bag) - 1
	c := b.bag[last]
	b.bag = b.bag[:last]
	return c, nil
}

// Remaining reports how many draws are left before the next refill.
func (b *Bag) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bag)
}

// Reset empties the bag so the next draw reshuffles the current catalog.
func (b *Bag) Reset(context.Context) error {
	b.mu.Lock()
	b.bag = nil
	b.mu.Unlock()
	return nil
}

// Refill copies pool, Fisher-Yates shuffles the copy and truncates it to size.
func Refill[T any](pool []T, size int, rnd *rand.Rand) []T {
	out := make([]T, len(pool))
	copy(out, pool)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	if len(out) > size {
		out = out[:size]
	}
	return out
}
