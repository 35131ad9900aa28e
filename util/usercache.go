package util

import (
	"container/list"
	"os"
	"strconv"
	"sync"

	"gorm.io/gorm"
)

// LRU cache for userID -> username, used to enrich audit events without
// a DB round trip per request.
type userEntry struct {
	userID   uint
	username string
}

type userLRU struct {
	mu       sync.Mutex
	ll       *list.List
	cache    map[uint]*list.Element
	capacity int
}

var userCache *userLRU

// InitUserCache initializes the LRU cache with the given capacity.
// If capacity <= 0, a default of 1000 is used.
func InitUserCache(capacity int) {
	if capacity <= 0 {
		capacity = 1000
	}
	userCache = &userLRU{
		ll:       list.New(),
		cache:    make(map[uint]*list.Element),
		capacity: capacity,
	}
}

// UserCacheGet returns the username and true if present in the cache.
func UserCacheGet(userID uint) (string, bool) {
	if userCache == nil {
		return "", false
	}
	userCache.mu.Lock()
	defer userCache.mu.Unlock()
	if ele, ok := userCache.cache[userID]; ok {
		userCache.ll.MoveToFront(ele)
		if e, ok := ele.Value.(userEntry); ok {
			return e.username, true
		}
	}
	return "", false
}

// UserCacheSet stores the username for a userID.
func UserCacheSet(userID uint, username string) {
	if userCache == nil {
		return
	}
	userCache.mu.Lock()
	defer userCache.mu.Unlock()
	if ele, ok := userCache.cache[userID]; ok {
		userCache.ll.MoveToFront(ele)
		ele.Value = userEntry{userID: userID, username: username}
		return
	}
	ele := userCache.ll.PushFront(userEntry{userID: userID, username: username})
	userCache.cache[userID] = ele
	if userCache.ll.Len() > userCache.capacity {
		tail := userCache.ll.Back()
		if tail != nil {
			if e, ok := tail.Value.(userEntry); ok {
				delete(userCache.cache, e.userID)
			}
			userCache.ll.Remove(tail)
		}
	}
}

// UserCacheEvict drops a userID from the cache, e.g. after deletion.
func UserCacheEvict(userID uint) {
	if userCache == nil {
		return
	}
	userCache.mu.Lock()
	defer userCache.mu.Unlock()
	if ele, ok := userCache.cache[userID]; ok {
		userCache.ll.Remove(ele)
		delete(userCache.cache, userID)
	}
}

// GetUsernameByID returns the username for userID using the cache,
// falling back to the DB and caching the result.
func GetUsernameByID(db *gorm.DB, userID uint) string {
	if userID == 0 {
		return ""
	}
	if username, ok := UserCacheGet(userID); ok {
		return username
	}
	if db == nil {
		return ""
	}
	var u struct{ Username string }
	if err := db.Table("users").Select("username").Where("id = ?", userID).Take(&u).Error; err == nil {
		if u.Username != "" {
			UserCacheSet(userID, u.Username)
		}
		return u.Username
	}
	return ""
}

// InitUserCacheFromEnv initializes the cache from USER_CACHE_SIZE.
func InitUserCacheFromEnv() {
	sizeStr := os.Getenv("USER_CACHE_SIZE")
	if sizeStr == "" {
		InitUserCache(0)
		return
	}
	if n, err := strconv.Atoi(sizeStr); err == nil {
		InitUserCache(n)
		return
	}
	InitUserCache(0)
}
