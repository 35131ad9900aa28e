package util

import (
	"context"
	"fmt"
	"time"

	"github.com/diyetisyenim/diyet-api/config"
	"github.com/diyetisyenim/diyet-api/model"
)

// Redis session helpers. All of them are best-effort: when no Redis
// client is configured they succeed silently, because token validation
// itself is stateless.

func userSetKey(userID uint) string {
	return fmt.Sprintf("user_sessions:%d", userID)
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// CacheSession stores the token -> "userID:role" mapping with the token
// TTL and tracks the token in the per-user set.
func CacheSession(userID uint, role model.Role, token string, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	val := fmt.Sprintf("%d:%s", userID, role)
	if err := rdb.Set(ctx, sessionKey(token), val, ttl).Err(); err != nil {
		return err
	}
	return AddSessionToUserSet(userID, token, ttl)
}

// AddSessionToUserSet adds the token to the per-user Redis set and keeps
// the set alive at least as long as the token.
func AddSessionToUserSet(userID uint, token string, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	key := userSetKey(userID)
	if err := rdb.SAdd(ctx, key, token).Err(); err != nil {
		return err
	}
	return rdb.Expire(ctx, key, ttl).Err()
}

// RemoveSessionTokenFromUserSet removes one token from the per-user set,
// deleting the set atomically when it becomes empty.
func RemoveSessionTokenFromUserSet(userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	script := `
		local removed = redis.call('SREM', KEYS[1], ARGV[1])
		if removed > 0 and redis.call('SCARD', KEYS[1]) == 0 then
			redis.call('DEL', KEYS[1])
		end
		return removed
	`
	return rdb.Eval(ctx, script, []string{userSetKey(userID)}, token).Err()
}

// DropSession removes a single cached session and its set membership.
func DropSession(userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	if err := rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return err
	}
	return RemoveSessionTokenFromUserSet(userID, token)
}

// InvalidateUserSessions drops every cached session of a user, used when
// the account is deleted or its password changes.
func InvalidateUserSessions(userID uint) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	key := userSetKey(userID)

	tokens, err := rdb.SMembers(ctx, key).Result()
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if err := rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
			return err
		}
	}
	return rdb.Del(ctx, key).Err()
}
