package auth

import (
	"context"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v4"

	"github.com/vireolabs/beacon/errors"
	"github.com/vireolabs/beacon/internal/httpclient"
)

// KeyCache holds TTL-bounded JWKS material fetched from issuer key servers,
// keyed by JWKS URL. It is the only state shared across requests.
//
// A cache miss triggers a single fetch; failures are returned to the caller
// and never cached. Concurrent misses for the same URL may each fetch; the
// cache does not deduplicate the thundering herd, it only guarantees the map
// itself is safe under concurrent access.
type KeyCache struct {
	mu      sync.RWMutex
	entries map[string]*keyCacheEntry
	ttl     time.Duration
	client  *httpclient.SaferClient
}

type keyCacheEntry struct {
	keys      *jose.JSONWebKeySet
	fetchedAt time.Time
}

// NewKeyCache creates a key cache with the given TTL and HTTP client.
func NewKeyCache(ttl time.Duration, client *httpclient.SaferClient) *KeyCache {
	return &KeyCache{
		entries: make(map[string]*keyCacheEntry),
		ttl:     ttl,
		client:  client,
	}
}

// Get returns the key set for jwksURL, from cache when fresh, otherwise via
// a single network fetch.
func (c *KeyCache) Get(ctx context.Context, jwksURL string) (*jose.JSONWebKeySet, error) {
	c.mu.RLock()
	entry, ok := c.entries[jwksURL]
	c.mu.RUnlock()
	if ok && time.Since(entry.fetchedAt) < c.ttl {
		return entry.keys, nil
	}

	var keys jose.JSONWebKeySet
	if err := c.client.GetJSON(ctx, jwksURL, "", &keys); err != nil {
		return nil, errors.Wrapf(err, "fetch key set from %s", jwksURL)
	}
	if len(keys.Keys) == 0 {
		return nil, errors.Newf("key set from %s contains no keys", jwksURL)
	}

	c.mu.Lock()
	c.entries[jwksURL] = &keyCacheEntry{
		keys:      &keys,
		fetchedAt: time.Now(),
	}
	c.mu.Unlock()

	return &keys, nil
}

// keyFor resolves the verification key for a token's kid header within a
// key set. A token without a kid falls back to the first signature key.
func keyFor(set *jose.JSONWebKeySet, kid string) (interface{}, error) {
	if kid != "" {
		for _, k := range set.Key(kid) {
			if k.Use == "" || k.Use == "sig" {
				return k.Key, nil
			}
		}
		return nil, errors.Newf("key %q not found in key set", kid)
	}
	for _, k := range set.Keys {
		if k.Use == "" || k.Use == "sig" {
			return k.Key, nil
		}
	}
	return nil, errors.New("key set contains no signature keys")
}
