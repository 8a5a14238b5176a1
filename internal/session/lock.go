package session

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// stripedLock serializes work per session id over a fixed set of mutexes.
type stripedLock struct {
	stripes [lockStripes]sync.Mutex
}

func (l *stripedLock) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	mu := &l.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
