package storage

import (
	"context"
	"sync"

	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// MemoryBackend keeps slots in process memory.
type MemoryBackend struct {
	mu    sync.RWMutex
	slots map[string]map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{slots: make(map[string]map[string]string)}
}

func (m *MemoryBackend) Name() string { return config.StorageBackendMemory }

func (m *MemoryBackend) Read(ctx context.Context, namespace, slot string) (string, bool, error) {
	if err := validateKey(namespace, slot); err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid storage key")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.slots[namespace][slot]
	return value, ok, nil
}

func (m *MemoryBackend) Write(ctx context.Context, namespace, slot, value string) error {
	if err := validateKey(namespace, slot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid storage key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.slots[namespace]
	if !ok {
		bucket = make(map[string]string)
		m.slots[namespace] = bucket
	}
	bucket[slot] = value
	return nil
}

func (m *MemoryBackend) Delete(ctx context.Context, namespace, slot string) error {
	if err := validateKey(namespace, slot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid storage key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.slots[namespace]
	if !ok {
		return nil
	}
	delete(bucket, slot)
	if len(bucket) == 0 {
		delete(m.slots, namespace)
	}
	return nil
}

// Ping always succeeds.
func (m *MemoryBackend) Ping(context.Context) error { return nil }
