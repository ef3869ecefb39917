package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"vpn-bus-api/internal/constants"
)

// KeyedLocker serialises check-then-act sequences per key inside one
// process. It does not protect against other processes sharing the store.
// Entries live in a go-cache registry without expiry and are removed when
// the last holder or waiter releases them; mu guards the holder counts.
type KeyedLocker struct {
	mu    sync.Mutex
	locks *cache.Cache
}

type keyedLock struct {
	mu      sync.Mutex
	holders int
}

// NewKeyedLocker creates a new keyed lock registry
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{
		locks: cache.New(cache.NoExpiration, constants.CacheCleanupInterval*time.Minute),
	}
}

// Lock blocks until the key is free and returns the matching unlock func
func (l *KeyedLocker) Lock(key string) func() {
	l.mu.Lock()
	entry := &keyedLock{}
	if err := l.locks.Add(key, entry, cache.NoExpiration); err != nil {
		// Add fails only when the key is already registered
		v, _ := l.locks.Get(key)
		entry = v.(*keyedLock)
	}
	entry.holders++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.holders--
		if entry.holders == 0 {
			l.locks.Delete(key)
		}
		l.mu.Unlock()
	}
}

// Len returns the number of keys currently held or awaited
func (l *KeyedLocker) Len() int {
	return l.locks.ItemCount()
}

func accountLockKey(chatID string, serverID int64) string {
	return fmt.Sprintf("account:%s:%d", chatID, serverID)
}

func configLockKey(accountID int64) string {
	return fmt.Sprintf("config:%d", accountID)
}
