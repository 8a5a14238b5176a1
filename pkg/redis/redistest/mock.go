// Package redistest provides an in-memory command backend for exercising redis.Client.
package redistest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockCmdable implements redis.Cmdable over plain maps.
type MockCmdable struct {
	mu          sync.Mutex
	Data        map[string]string
	TTLs        map[string]time.Duration
	Counters    map[string]int64
	ExpireCalls []ExpireCall
	Err         error
}

// ExpireCall records one Expire invocation.
type ExpireCall struct {
	Key string
	TTL time.Duration
}

func NewMockCmdable() *MockCmdable {
	return &MockCmdable{
		Data:     make(map[string]string),
		TTLs:     make(map[string]time.Duration),
		Counters: make(map[string]int64),
	}
}

func (m *MockCmdable) Ping(context.Context) *redis.StatusCmd {
	if m.Err != nil {
		return redis.NewStatusResult("", m.Err)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (m *MockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewStatusResult("", m.Err)
	}
	m.Data[key] = fmt.Sprint(value)
	m.TTLs[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *MockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewStringResult("", m.Err)
	}
	v, ok := m.Data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *MockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewIntResult(0, m.Err)
	}
	m.Counters[key]++
	return redis.NewIntResult(m.Counters[key], nil)
}

func (m *MockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExpireCalls = append(m.ExpireCalls, ExpireCall{Key: key, TTL: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *MockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return redis.NewIntResult(0, m.Err)
	}
	for _, key := range keys {
		delete(m.Data, key)
		delete(m.TTLs, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
