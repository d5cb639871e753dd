package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// FlightGuard is an in-process single-flight lock set. Acquire is atomic:
// only one caller can hold a key at a time. Keys carry a TTL so a crashed
// holder cannot wedge its key forever.
type FlightGuard struct {
	cache *cache.Cache
}

func NewFlightGuard() *FlightGuard {
	// No default expiration; every Acquire sets its own TTL. Purge sweeps
	// expired keys every 10 minutes.
	c := cache.New(cache.NoExpiration, 10*time.Minute)
	return &FlightGuard{cache: c}
}

// Acquire takes the key if it is free, returning false when another caller
// already holds it.
func (g *FlightGuard) Acquire(key string, ttl time.Duration) bool {
	return g.cache.Add(key, struct{}{}, ttl) == nil
}

func (g *FlightGuard) Release(key string) {
	g.cache.Delete(key)
}
