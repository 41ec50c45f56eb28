package store

import (
	"encoding/json"

	"example.com/socialnet/internal/models"
	"github.com/bradfitz/gomemcache/memcache"
)

// profileTTL bounds how stale a cached profile lookup may be.
const profileTTL = 300 // seconds

// Cache is a best-effort read cache for profile lookups. Misses and
// backend failures both fall through to Cassandra.
type Cache interface {
	GetProfile(username string) (models.User, bool)
	SetProfile(u models.User)
	DropProfile(username string)
}

// NoopCache disables caching.
type NoopCache struct{}

func (NoopCache) GetProfile(string) (models.User, bool) { return models.User{}, false }
func (NoopCache) SetProfile(models.User)                {}
func (NoopCache) DropProfile(string)                    {}

// MemcachedCache caches serialized users keyed by username.
type MemcachedCache struct {
	client *memcache.Client
}

func NewMemcachedCache(addr string) *MemcachedCache {
	return &MemcachedCache{client: memcache.New(addr)}
}

func profileKey(username string) string {
	return "profile:" + username
}

func (c *MemcachedCache) GetProfile(username string) (models.User, bool) {
	item, err := c.client.Get(profileKey(username))
	if err != nil {
		return models.User{}, false
	}

	var u models.User
	if err := json.Unmarshal(item.Value, &u); err != nil {
		return models.User{}, false
	}
	return u, true
}

func (c *MemcachedCache) SetProfile(u models.User) {
	data, err := json.Marshal(u)
	if err != nil {
		return
	}
	_ = c.client.Set(&memcache.Item{
		Key:        profileKey(u.Username),
		Value:      data,
		Expiration: profileTTL,
	})
}

func (c *MemcachedCache) DropProfile(username string) {
	_ = c.client.Delete(profileKey(username))
}
