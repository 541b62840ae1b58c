package core

import (
	"hash/fnv"
	"sync"
)

const lockShards = 64

// userLocks serializes recordEvent calls per user without a global mutex.
// Two users only contend when their ids hash to the same shard.
type userLocks struct {
	shards [lockShards]sync.Mutex
}

func (l *userLocks) lock(userID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(userID))
	mu := &l.shards[h.Sum32()%lockShards]
	mu.Lock()
	return mu
}
