package rpcclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/atomic"
)

// cachePolicy describes how results of some method are cached.
type cachePolicy struct {
	ttl time.Duration
	// stateful entries depend on the chain state and are invalidated by
	// any write made through the client. Immutable-by-hash ones aren't.
	stateful bool
}

// Default TTLs for cacheable methods.
const (
	blockCountTTL    = 5 * time.Second
	immutableTTL     = time.Hour
	contractStateTTL = 60 * time.Second
	balancesTTL      = 10 * time.Second
	invokeTTL        = 5 * time.Second
)

// writeMethods change the chain state, every call to them bumps the cache
// generation.
var writeMethods = map[string]bool{
	"sendrawtransaction": true,
	"submitblock":        true,
}

// policyFor returns the cache policy for the given request, ok is false for
// requests that must never be cached.
func policyFor(method string, params []any) (cachePolicy, bool) {
	switch method {
	case "getblockcount":
		return cachePolicy{ttl: blockCountTTL, stateful: true}, true
	case "getblock", "getblockheader":
		if len(params) > 0 && isHashParam(params[0]) {
			return cachePolicy{ttl: immutableTTL}, true
		}
	case "getcontractstate":
		return cachePolicy{ttl: contractStateTTL, stateful: true}, true
	case "getapplicationlog", "getversion":
		return cachePolicy{ttl: immutableTTL}, true
	case "getnep17balances":
		return cachePolicy{ttl: balancesTTL, stateful: true}, true
	case "invokefunction":
		// contract, method, parameters and optional signers.
		if len(params) <= 3 {
			return cachePolicy{ttl: invokeTTL, stateful: true}, true
		}
	case "invokescript":
		if len(params) <= 1 {
			return cachePolicy{ttl: invokeTTL, stateful: true}, true
		}
	}
	return cachePolicy{}, false
}

func isHashParam(p any) bool {
	s, ok := p.(string)
	if !ok {
		return false
	}
	return len(strings.TrimPrefix(s, "0x")) == 64
}

// cacheKey returns method name with the canonical JSON form of parameters:
// object keys are sorted, integers are turned into decimal strings so that
// 5 and "5" make the same key.
func cacheKey(method string, params []any) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	canon, err := json.Marshal(canonicalize(v))
	if err != nil {
		return "", err
	}
	return method + string(canon), nil
}

func canonicalize(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, ok := new(big.Int).SetString(v.String(), 10); ok {
			return i.String()
		}
		return v.String()
	case []any:
		for i := range v {
			v[i] = canonicalize(v[i])
		}
		return v
	case map[string]any:
		// encoding/json sorts map keys on marshaling.
		for k := range v {
			v[k] = canonicalize(v[k])
		}
		return v
	default:
		return v
	}
}

type cacheEntry struct {
	value      json.RawMessage
	expires    time.Time
	generation uint64
	stateful   bool
}

// responseCache is an LRU cache of raw JSON-RPC results with per-entry TTL
// and generation stamps.
type responseCache struct {
	lru        *lru.Cache
	generation *atomic.Uint64
	now        func() time.Time
}

func newResponseCache(size int, now func() time.Time) (*responseCache, error) {
	l, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &responseCache{
		lru:        l,
		generation: atomic.NewUint64(0),
		now:        now,
	}, nil
}

// Generation returns the current write generation.
func (c *responseCache) Generation() uint64 {
	return c.generation.Load()
}

// Invalidate makes all stateful entries stale.
func (c *responseCache) Invalidate() {
	c.generation.Inc()
}

// Get returns a live entry. Expired and stale entries are removed and
// reported as misses.
func (c *responseCache) Get(key string) (json.RawMessage, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(*cacheEntry)
	if !c.now().Before(e.expires) || (e.stateful && e.generation != c.generation.Load()) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.value, true
}

// Add stores the value stamped with the generation observed before the
// request was made, so results racing with a write never become live.
func (c *responseCache) Add(key string, value json.RawMessage, p cachePolicy, generation uint64) {
	if p.stateful && generation != c.generation.Load() {
		return
	}
	c.lru.Add(key, &cacheEntry{
		value:      value,
		expires:    c.now().Add(p.ttl),
		generation: generation,
		stateful:   p.stateful,
	})
}

// Len returns the number of stored entries (including expired ones not yet
// looked up).
func (c *responseCache) Len() int {
	return c.lru.Len()
}

// Purge drops everything.
func (c *responseCache) Purge() {
	c.lru.Purge()
}
