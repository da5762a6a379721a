package restapi

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// ResponseCache keeps successful portfolio responses in process memory.
type ResponseCache struct {
	store *cache.Cache
}

// NewResponseCache creates a cache whose entries expire after ttl.
func NewResponseCache(ttl time.Duration) *ResponseCache {
	return &ResponseCache{store: cache.New(ttl, 2*ttl)}
}

// Get returns a cached response.
func (c *ResponseCache) Get(key string) (APIResponse, bool) {
	if c == nil {
		return APIResponse{}, false
	}
	v, ok := c.store.Get(key)
	if !ok {
		return APIResponse{}, false
	}
	return v.(APIResponse), true
}

// Set stores a response under key with the default expiration.
func (c *ResponseCache) Set(key string, resp APIResponse) {
	if c == nil {
		return
	}
	c.store.SetDefault(key, resp)
}

// cacheKey identifies a valuation; the provider key is hashed so it never sits in memory in clear.
func cacheKey(profile string, addresses []string, apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return profile + "|" + strings.Join(addresses, ",") + "|" + hex.EncodeToString(sum[:8])
}
