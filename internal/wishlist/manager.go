// Package wishlist owns the saved-product collection of one shopper session.
package wishlist

import (
	"context"
	"strings"

	product "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/observable"
)

const (
	OpAdd    = "add"
	OpRemove = "remove"
	OpClear  = "clear"
)

// Entry is the product snapshot taken when it was wishlisted.
type Entry = product.Product

type Options struct {
	OnCorrupt storage.CorruptionHook
}

// Event is published after every persisted mutation.
type Event struct {
	Op      string
	Entries []Entry
}

// Manager is not safe for concurrent use; callers serialize access per session.
type Manager struct {
	store   storage.Store
	opts    Options
	entries []Entry
	subject observable.Subject[Event]
}

func NewManager(store storage.Store, opts Options) *Manager {
	return &Manager{store: store, opts: opts, entries: []Entry{}}
}

// Hydrate loads the persisted wishlist. Repeated ids keep their first occurrence.
func (m *Manager) Hydrate(ctx context.Context) error {
	entries, _, err := storage.ReadJSON[[]Entry](ctx, m.store, storage.SlotWishlist, m.opts.OnCorrupt)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(entries))
	unique := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.ID) == "" {
			continue
		}
		if _, dup := seen[entry.ID]; dup {
			continue
		}
		seen[entry.ID] = struct{}{}
		unique = append(unique, entry)
	}
	m.entries = unique
	return nil
}

// Toggle removes p when present and appends it otherwise. It reports whether p
// is wishlisted afterwards.
func (m *Manager) Toggle(ctx context.Context, p product.Product) (bool, error) {
	op, next := OpAdd, append(cloneEntries(m.entries), cloneEntry(p))
	if m.Contains(p.ID) {
		op, next = OpRemove, m.without(p.ID)
	}
	if err := m.commit(ctx, op, next); err != nil {
		return m.Contains(p.ID), err
	}
	return op == OpAdd, nil
}

func (m *Manager) Remove(ctx context.Context, id string) error {
	return m.commit(ctx, OpRemove, m.without(id))
}

func (m *Manager) Clear(ctx context.Context) error {
	return m.commit(ctx, OpClear, []Entry{})
}

func (m *Manager) Contains(id string) bool {
	for _, entry := range m.entries {
		if entry.ID == id {
			return true
		}
	}
	return false
}

// Entries returns a copy in the order products were added.
func (m *Manager) Entries() []Entry {
	return cloneEntries(m.entries)
}

func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	return m.subject.Subscribe(fn)
}

func (m *Manager) without(id string) []Entry {
	next := make([]Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		if entry.ID != id {
			next = append(next, cloneEntry(entry))
		}
	}
	return next
}

func (m *Manager) commit(ctx context.Context, op string, next []Entry) error {
	if err := storage.WriteJSON(ctx, m.store, storage.SlotWishlist, next); err != nil {
		return err
	}
	m.entries = next
	m.subject.Publish(Event{Op: op, Entries: cloneEntries(next)})
	return nil
}

func cloneEntry(e Entry) Entry {
	if e.Tags != nil {
		e.Tags = append([]string(nil), e.Tags...)
	}
	return e
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, entry := range entries {
		out[i] = cloneEntry(entry)
	}
	return out
}
