// Package cache memoizes compiled automaton transition tables in Redis,
// keyed by a hash of the rule text and the shift catalog version that
// produced them — compiling a regex.Expr into an automaton.DFA is pure
// and deterministic in those two inputs, so a cache entry never changes
// the result. The cached shape is for introspection only: nothing
// rebuilds a DFA from it, and cmd/planservice runs Build on a hit as
// well as on a miss. The direct redis Get/Set calls with redis.Nil as
// the miss sentinel follow the teacher's handler code, wrapped here in
// a small package because there is no handler layer to hold them.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a redis.Client with a fixed TTL for every cached entry.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps client, caching entries for ttl.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key derives the cache key for a rule pattern compiled against a
// given shift-catalog version.
func Key(pattern string, catalogVersion int64) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%d", pattern, catalogVersion)))
	return "automaton:" + hex.EncodeToString(h[:])
}

// Transition is the JSON-serializable form of one automaton.Transition,
// independent of the core's generic DFA type so this package never
// needs to know the letter type.
type Transition struct {
	From    int     `json:"from"`
	To      int     `json:"to"`
	Buckets [][]int `json:"buckets"`
}

// CompiledDFA is the cacheable shape of a built automaton: its ordered
// letter alphabet (as shift codes), accepting states, and transitions.
// Reconstructing a DFA from this shape is the cache layer's caller's
// job, since only it knows how to turn a shift code back into a
// shift.Shift via the live catalog.
type CompiledDFA struct {
	Alphabet   []string     `json:"alphabet"`
	NStates    int          `json:"nStates"`
	Accepting  []int        `json:"accepting"`
	Transitions []Transition `json:"transitions"`
}

// Get returns the cached compiled DFA for key, or ok=false on a miss.
func (c *Cache) Get(ctx context.Context, key string) (*CompiledDFA, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var out CompiledDFA
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, err
	}
	return &out, true, nil
}

// Set stores a compiled DFA under key with the cache's configured TTL.
func (c *Cache) Set(ctx context.Context, key string, dfa *CompiledDFA) error {
	raw, err := json.Marshal(dfa)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}
