package app

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDGenerator produces lexically sortable identifiers.
type IDGenerator struct {
	mu      sync.Mutex
	entropy *rand.Rand
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{entropy: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// New returns a ULID stamped with the current time.
func (g *IDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}
