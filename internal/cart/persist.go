package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bloomthreads/cartstate/pkg/keyvalue"
	"github.com/bloomthreads/cartstate/pkg/logger"
)

// slot serializes the whole snapshot to one durable key as a UTF-8 JSON
// array of items. Reads never fail: a missing, unreadable or malformed
// value yields an empty snapshot so a corrupt slot can never break the UI.
type slot struct {
	kv   keyvalue.Store
	key  string
	logg *logger.Logger
}

func (s slot) write(ctx context.Context, items Snapshot) error {
	if items == nil {
		items = Snapshot{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("persisting snapshot: %w", err)
	}
	return nil
}

// load returns the slot contents. An absent key is an empty snapshot, not an
// error; a failed backend read is surfaced so the caller can decide whether
// the current in-memory state should survive it.
func (s slot) load(ctx context.Context) (Snapshot, error) {
	data, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, keyvalue.ErrNotFound) {
			return Snapshot{}, nil
		}
		return nil, err
	}

	var items Snapshot
	if err := json.Unmarshal(data, &items); err != nil {
		s.warn(ctx, "cart slot malformed, treating as empty", err)
		return Snapshot{}, nil
	}
	return sanitize(items), nil
}

// read is the startup path: a backend that cannot be read yields an empty
// cart rather than failing the boot.
func (s slot) read(ctx context.Context) Snapshot {
	items, err := s.load(ctx)
	if err != nil {
		s.warn(ctx, "cart slot unreadable, starting empty", err)
		return Snapshot{}
	}
	return items
}

// clear removes the slot key entirely; an absent key and an empty snapshot
// restore identically.
func (s slot) clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	return nil
}

// sanitize drops entries that violate the snapshot invariants: empty keys,
// quantities below one, and duplicated identity keys (first wins).
func sanitize(items Snapshot) Snapshot {
	out := make(Snapshot, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.IdentityKey == "" || item.Quantity < 1 {
			continue
		}
		if _, dup := seen[item.IdentityKey]; dup {
			continue
		}
		seen[item.IdentityKey] = struct{}{}
		out = append(out, item)
	}
	return out
}

func (s slot) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithField(ctx, "error", err.Error())
	s.logg.Warn(ctx, msg)
}
