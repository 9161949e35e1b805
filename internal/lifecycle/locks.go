package lifecycle

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// keyedLocks serializes coordinator operations per entity. The version guard
// on UPDATE still protects against writers outside this process; the lock
// just keeps local retries from burning version conflicts against each other.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func orderKey(id snowflake.ID) string        { return fmt.Sprintf("order:%d", id) }
func subscriptionKey(id snowflake.ID) string { return fmt.Sprintf("subscription:%d", id) }
