package application

import (
	"context"
	"sync"
	"time"
)

// CachingValidator remembers positive validation answers for a short time so
// that a console serving many requests per session does not revalidate the
// token on each one. Rejections and errors are never cached.
type CachingValidator struct {
	next  TokenValidator
	cache *validationCache
}

// NewCachingValidator wraps next with a TTL cache. Non-positive ttl and
// maxEntries fall back to 30 seconds and 128 entries.
func NewCachingValidator(next TokenValidator, ttl time.Duration, maxEntries int, now func() time.Time) *CachingValidator {
	return &CachingValidator{next: next, cache: newValidationCache(ttl, maxEntries, now)}
}

// ValidateToken implements TokenValidator.
func (v *CachingValidator) ValidateToken(ctx context.Context, role Role, token string) (bool, error) {
	key := validationKey(role, token)
	if v.cache.Get(key) {
		return true, nil
	}
	valid, err := v.next.ValidateToken(ctx, role, token)
	if err != nil {
		return false, err
	}
	if valid {
		v.cache.Set(key)
	} else {
		v.cache.Delete(key)
	}
	return valid, nil
}

// Forget drops any cached answer for the token, e.g. after logout.
func (v *CachingValidator) Forget(role Role, token string) {
	v.cache.Delete(validationKey(role, token))
}

func validationKey(role Role, token string) string {
	return string(role) + "\x00" + token
}

type validationCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]time.Time
}

func newValidationCache(ttl time.Duration, maxEntries int, now func() time.Time) *validationCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &validationCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]time.Time),
	}
}

func (c *validationCache) Get(key string) bool {
	c.mu.RLock()
	expiresAt, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	if c.now().After(expiresAt) {
		c.Delete(key)
		return false
	}
	return true
}

func (c *validationCache) Set(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = now.Add(c.ttl)
	if len(c.entries) > c.maxEntries {
		c.evict(now)
	}
}

func (c *validationCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// evict drops expired entries first, then the entries closest to expiry,
// until the cache is back under its limit. Callers hold the lock.
func (c *validationCache) evict(now time.Time) {
	for key, expiresAt := range c.entries {
		if now.After(expiresAt) {
			delete(c.entries, key)
		}
	}
	for len(c.entries) > c.maxEntries {
		var oldestKey string
		var oldest time.Time
		for key, expiresAt := range c.entries {
			if oldestKey == "" || expiresAt.Before(oldest) {
				oldestKey = key
				oldest = expiresAt
			}
		}
		delete(c.entries, oldestKey)
	}
}
