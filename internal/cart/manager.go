// Package cart owns the cart line collection of one shopper session.
package cart

import (
	"context"
	"strings"

	product "github.com/angelmondragon/storefront/internal/products"
	"github.com/angelmondragon/storefront/internal/storage"
	"github.com/angelmondragon/storefront/pkg/observable"
	"github.com/shopspring/decimal"
)

const (
	OpAdd         = "add"
	OpSetQuantity = "set_quantity"
	OpRemove      = "remove"
	OpClear       = "clear"
)

// Options tune manager behaviour.
type Options struct {
	// MergeDuplicates increments the existing line instead of appending a second one.
	MergeDuplicates  bool
	PlaceholderImage string
	OnCorrupt        storage.CorruptionHook
}

// Event is published after every persisted mutation.
type Event struct {
	Op    string
	Lines []Line
}

// Manager is not safe for concurrent use; callers serialize access per session.
type Manager struct {
	store   storage.Store
	opts    Options
	lines   []Line
	subject observable.Subject[Event]
}

func NewManager(store storage.Store, opts Options) *Manager {
	if opts.PlaceholderImage == "" {
		opts.PlaceholderImage = DefaultPlaceholderImage
	}
	return &Manager{store: store, opts: opts, lines: []Line{}}
}

// Hydrate replaces the in-memory lines with the persisted cart. Lines without an
// id are dropped and lines without an image get the placeholder.
func (m *Manager) Hydrate(ctx context.Context) error {
	stored, ok, err := storage.ReadJSON[[]Line](ctx, m.store, storage.SlotCart, m.opts.OnCorrupt)
	if err != nil {
		return err
	}
	lines := make([]Line, 0, len(stored))
	if ok {
		for _, line := range stored {
			if strings.TrimSpace(line.ID) == "" {
				continue
			}
			if line.ImageURL == "" {
				line.ImageURL = m.opts.PlaceholderImage
			}
			lines = append(lines, line)
		}
	}
	m.lines = lines
	return nil
}

// Add puts one unit of p in the cart.
func (m *Manager) Add(ctx context.Context, p product.Product) error {
	next := cloneLines(m.lines)
	if m.opts.MergeDuplicates {
		for i := range next {
			if next[i].ID == p.ID {
				next[i].Quantity++
				return m.commit(ctx, OpAdd, next)
			}
		}
	}
	next = append(next, newLine(p, m.opts.PlaceholderImage))
	return m.commit(ctx, OpAdd, next)
}

// SetQuantity updates every line matching id. Quantities below 1 are ignored.
func (m *Manager) SetQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 1 {
		return nil
	}
	next := cloneLines(m.lines)
	for i := range next {
		if next[i].ID == id {
			next[i].Quantity = quantity
		}
	}
	return m.commit(ctx, OpSetQuantity, next)
}

// Remove deletes all lines matching id. Unknown ids still persist the current cart.
func (m *Manager) Remove(ctx context.Context, id string) error {
	next := make([]Line, 0, len(m.lines))
	for _, line := range m.lines {
		if line.ID != id {
			next = append(next, line)
		}
	}
	return m.commit(ctx, OpRemove, cloneLines(next))
}

func (m *Manager) Clear(ctx context.Context) error {
	return m.commit(ctx, OpClear, []Line{})
}

// Total is the sum of price times quantity over all lines.
func (m *Manager) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range m.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Count is the number of units in the cart.
func (m *Manager) Count() int {
	count := 0
	for _, line := range m.lines {
		count += line.Quantity
	}
	return count
}

// Lines returns a copy of the cart in insertion order.
func (m *Manager) Lines() []Line {
	return cloneLines(m.lines)
}

func (m *Manager) Subscribe(fn func(Event)) (unsubscribe func()) {
	return m.subject.Subscribe(fn)
}

// commit persists next and only then makes it the in-memory state.
func (m *Manager) commit(ctx context.Context, op string, next []Line) error {
	if err := storage.WriteJSON(ctx, m.store, storage.SlotCart, next); err != nil {
		return err
	}
	m.lines = next
	m.subject.Publish(Event{Op: op, Lines: cloneLines(next)})
	return nil
}
