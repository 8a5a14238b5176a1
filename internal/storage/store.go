// Package storage persists string-serialized cart and wishlist slots per shopper session.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	SlotCart     = "cart"
	SlotWishlist = "wishlist"
)

// Store reads and writes the slots of a single session.
type Store interface {
	// Read returns the slot value and whether it was present.
	Read(ctx context.Context, slot string) (string, bool, error)
	Write(ctx context.Context, slot, value string) error
	// Delete removes the slot. Deleting an absent slot is not an error.
	Delete(ctx context.Context, slot string) error
}

// Backend is the namespaced persistence used to build session stores.
type Backend interface {
	Name() string
	Read(ctx context.Context, namespace, slot string) (string, bool, error)
	Write(ctx context.Context, namespace, slot, value string) error
	Delete(ctx context.Context, namespace, slot string) error
}

// Scope binds a backend to one session namespace.
func Scope(backend Backend, namespace string) Store {
	return scopedStore{backend: backend, namespace: strings.TrimSpace(namespace)}
}

type scopedStore struct {
	backend   Backend
	namespace string
}

func (s scopedStore) Read(ctx context.Context, slot string) (string, bool, error) {
	return s.backend.Read(ctx, s.namespace, slot)
}

func (s scopedStore) Write(ctx context.Context, slot, value string) error {
	return s.backend.Write(ctx, s.namespace, slot, value)
}

func (s scopedStore) Delete(ctx context.Context, slot string) error {
	return s.backend.Delete(ctx, s.namespace, slot)
}

// ParseError reports a persisted slot that could not be decoded. Callers recover
// by treating the slot as empty. ResetErr is set when removing the slot failed.
type ParseError struct {
	Slot     string
	Err      error
	ResetErr error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("storage slot %q is malformed: %v", e.Slot, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// CorruptionHook is notified whenever a slot is reset because it failed to parse.
type CorruptionHook func(ctx context.Context, err *ParseError)

// Observer receives storage timings.
type Observer interface {
	ObserveStorage(backend, op string, duration time.Duration)
}

// Instrument wraps backend so every operation is timed on obs.
func Instrument(backend Backend, obs Observer) Backend {
	if obs == nil {
		return backend
	}
	return instrumented{Backend: backend, obs: obs}
}

type instrumented struct {
	Backend
	obs Observer
}

func (i instrumented) Read(ctx context.Context, namespace, slot string) (string, bool, error) {
	start := time.Now()
	value, ok, err := i.Backend.Read(ctx, namespace, slot)
	i.obs.ObserveStorage(i.Backend.Name(), "read", time.Since(start))
	return value, ok, err
}

func (i instrumented) Write(ctx context.Context, namespace, slot, value string) error {
	start := time.Now()
	err := i.Backend.Write(ctx, namespace, slot, value)
	i.obs.ObserveStorage(i.Backend.Name(), "write", time.Since(start))
	return err
}

func (i instrumented) Delete(ctx context.Context, namespace, slot string) error {
	start := time.Now()
	err := i.Backend.Delete(ctx, namespace, slot)
	i.obs.ObserveStorage(i.Backend.Name(), "delete", time.Since(start))
	return err
}

func validateKey(namespace, slot string) error {
	if namespace == "" {
		return fmt.Errorf("storage namespace is required")
	}
	if strings.TrimSpace(slot) == "" {
		return fmt.Errorf("storage slot is required")
	}
	return nil
}
