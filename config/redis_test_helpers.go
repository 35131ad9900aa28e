package config

import (
	"sync"

	"github.com/redis/go-redis/v9"
)

// SetRedisClientForTest sets the Redis client for testing purposes.
// Not for production use.
func SetRedisClientForTest(client *redis.Client) {
	redisClient = client
}

// ResetRedisClientForTest resets the Redis client singleton for tests.
func ResetRedisClientForTest() {
	redisClient = nil
	redisOnce = sync.Once{}
}
