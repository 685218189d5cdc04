// Package cache instantáneas de perfil por sesión con expiración.
package cache

import (
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

const minEntries = 16

// ProfileCache LRU con TTL de perfiles ya normalizados (con empresa).
type ProfileCache struct {
	cache  *lru.LRU[string, entity.Profile]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewProfileCache size < 16 se eleva a 16. ttl 0 desactiva la expiración.
func NewProfileCache(size int, ttl time.Duration) *ProfileCache {
	if size < minEntries {
		size = minEntries
	}
	return &ProfileCache{cache: lru.NewLRU[string, entity.Profile](size, nil, ttl)}
}

// Get devuelve una copia del perfil cacheado.
func (c *ProfileCache) Get(userID string) (*entity.Profile, bool) {
	p, ok := c.cache.Get(userID)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &p, true
}

func (c *ProfileCache) Add(p *entity.Profile) {
	if p == nil || p.ID == "" {
		return
	}
	c.cache.Add(p.ID, *p)
}

func (c *ProfileCache) Remove(userIDs ...string) {
	for _, id := range userIDs {
		c.cache.Remove(id)
	}
}

func (c *ProfileCache) Purge() { c.cache.Purge() }

func (c *ProfileCache) Len() int { return c.cache.Len() }

// Stats aciertos y fallos acumulados.
func (c *ProfileCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
