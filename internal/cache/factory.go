package cache

import "github.com/redis/go-redis/v9"

// NewStore picks the cache backend: Redis when an address is configured,
// otherwise the in-process store.
func NewStore(redisAddr, redisPassword string) Store {
	if redisAddr == "" {
		return NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
	})
	return NewRedisStore(client)
}
