package storage

import (
	"context"
	"encoding/json"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// ReadJSON decodes the slot into a fresh T. Absent or blank slots report false.
// A payload that fails to decode is removed from the store, passed to hook and
// reported as absent, so callers start from an empty collection.
func ReadJSON[T any](ctx context.Context, store Store, slot string, hook CorruptionHook) (T, bool, error) {
	var zero T
	raw, ok, err := store.Read(ctx, slot)
	if err != nil {
		return zero, false, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return zero, false, nil
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		parseErr := &ParseError{Slot: slot, Err: err}
		parseErr.ResetErr = store.Delete(ctx, slot)
		if hook != nil {
			hook(ctx, parseErr)
		}
		return zero, false, nil
	}
	return out, true, nil
}

// WriteJSON encodes value and stores it in slot.
func WriteJSON(ctx context.Context, store Store, slot string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode storage slot")
	}
	return store.Write(ctx, slot, string(payload))
}
