// Package cart holds the canonical shopping-cart state: an ordered sequence
// of line items keyed by product + variant identity, persisted write-through
// to a durable slot and broadcast to subscribers after every commit.
package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bloomthreads/cartstate/internal/products"
	"github.com/bloomthreads/cartstate/pkg/keyvalue"
	"github.com/bloomthreads/cartstate/pkg/logger"
	"github.com/bloomthreads/cartstate/pkg/metrics"
	"github.com/bloomthreads/cartstate/pkg/pubsub"
)

const defaultStorageKey = "cartstate:items"

// Options configures a Store. KV is required; everything else has a default
// or is optional.
type Options struct {
	KV         keyvalue.Store
	StorageKey string
	Bus        *pubsub.Bus
	Logger     *logger.Logger
	Metrics    *metrics.CartMetrics
}

// Store is the single source of truth for the cart. Every mutation computes
// the full next snapshot, writes it through to the durable slot, commits it
// in memory and then notifies subscribers; a failed write aborts the commit,
// so the durable copy and the in-memory snapshot never diverge.
type Store struct {
	mu    sync.Mutex
	items Snapshot

	slot    slot
	bus     *pubsub.Bus
	logg    *logger.Logger
	metrics *metrics.CartMetrics
}

// NewStore seeds the store from the durable slot. A missing or corrupt slot
// value yields an empty cart, never an error.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	if opts.KV == nil {
		return nil, fmt.Errorf("keyvalue store required")
	}
	if opts.StorageKey == "" {
		opts.StorageKey = defaultStorageKey
	}
	if opts.Bus == nil {
		opts.Bus = pubsub.NewBus(opts.Logger)
	}

	s := &Store{
		slot:    slot{kv: opts.KV, key: opts.StorageKey, logg: opts.Logger},
		bus:     opts.Bus,
		logg:    opts.Logger,
		metrics: opts.Metrics,
	}
	s.items = s.slot.read(ctx)
	s.metrics.SetItemCount(countItems(s.items))
	return s, nil
}

// Add appends a new line for the (product, variant) identity or increments
// the existing line's quantity. Product validity is the caller's concern;
// Add itself never rejects.
func (s *Store) Add(ctx context.Context, p products.Product, size, color *string) error {
	key := IdentityKey(p.ID, size, color)
	if s.logg != nil {
		ctx = s.logg.WithItemKey(ctx, key)
	}

	s.mu.Lock()
	next := s.items.Clone()
	if i := next.indexOf(key); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, Item{
			IdentityKey:   key,
			Product:       p,
			Quantity:      1,
			SelectedSize:  cloneString(size),
			SelectedColor: cloneString(color),
		})
	}
	err := s.commit(ctx, "add", next)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// Remove deletes the line with the given identity key. Unknown keys are a
// silent no-op.
func (s *Store) Remove(ctx context.Context, key string) error {
	if s.logg != nil {
		ctx = s.logg.WithItemKey(ctx, key)
	}

	s.mu.Lock()
	i := s.items.indexOf(key)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	next := s.items.Clone()
	next = append(next[:i], next[i+1:]...)
	err := s.commit(ctx, "remove", next)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// SetQuantity updates the line's quantity; a quantity of zero or less
// removes the line. Unknown keys are a silent no-op.
func (s *Store) SetQuantity(ctx context.Context, key string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, key)
	}
	if s.logg != nil {
		ctx = s.logg.WithItemKey(ctx, key)
	}

	s.mu.Lock()
	i := s.items.indexOf(key)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	next := s.items.Clone()
	next[i].Quantity = quantity
	err := s.commit(ctx, "set_quantity", next)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// ChangeVariant relabels the line with a new size/color identity. When the
// new identity already exists on another line the quantities are merged and
// the source line deleted; no snapshot with two lines sharing a key is ever
// committed or observable.
func (s *Store) ChangeVariant(ctx context.Context, key string, newSize, newColor *string) error {
	if s.logg != nil {
		ctx = s.logg.WithItemKey(ctx, key)
	}

	s.mu.Lock()
	i := s.items.indexOf(key)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}

	newKey := IdentityKey(s.items[i].Product.ID, newSize, newColor)
	if newKey == key {
		s.mu.Unlock()
		return nil
	}

	next := s.items.Clone()
	if j := next.indexOf(newKey); j >= 0 {
		next[j].Quantity += next[i].Quantity
		next = append(next[:i], next[i+1:]...)
	} else {
		next[i].IdentityKey = newKey
		next[i].SelectedSize = cloneString(newSize)
		next[i].SelectedColor = cloneString(newColor)
	}
	err := s.commit(ctx, "change_variant", next)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(ctx)
	return nil
}

// Clear empties the cart and removes the durable slot key entirely; an
// absent key restores identically to an empty snapshot.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if err := s.slot.clear(ctx); err != nil {
		s.mu.Unlock()
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "op", "clear"), "cart.commit_failed", err)
		}
		return err
	}
	s.items = Snapshot{}
	s.metrics.IncMutation("clear")
	s.metrics.SetItemCount(0)
	if s.logg != nil {
		s.logg.Debug(s.logg.WithField(ctx, "op", "clear"), "cart.committed")
	}
	s.mu.Unlock()

	s.notify(ctx)
	return nil
}

// Reload replaces the in-memory snapshot with the durable slot's contents
// and notifies subscribers. Wired to the cross-instance change signal. A
// failed read keeps the current snapshot and skips the notification: the
// durable copy still holds the committed lines, and adopting an empty
// snapshot here would let the next write-through destroy them.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	items, err := s.slot.load(ctx)
	if err != nil {
		s.mu.Unlock()
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.reload_failed, keeping current snapshot")
		}
		return
	}
	s.items = items
	s.metrics.SetItemCount(countItems(items))
	s.mu.Unlock()

	s.notify(ctx)
}

// Snapshot returns a copy of the current line items.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Clone()
}

// Total sums quantity x discounted unit price across all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		line := item.Product.DiscountedUnitPrice().Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total
}

// ItemCount sums line quantities.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countItems(s.items)
}

// UniqueProductCount counts distinct product ids. A product held in two
// sizes counts once, unlike the identity-key count.
func (s *Store) UniqueProductCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]struct{}, len(s.items))
	for _, item := range s.items {
		seen[item.Product.ID] = struct{}{}
	}
	return len(seen)
}

// Subscribe registers a callback invoked after every committed mutation.
func (s *Store) Subscribe(fn func()) func() {
	return s.bus.Subscribe(fn)
}

// commit writes the next snapshot through and installs it in memory. Caller
// must hold s.mu. On write failure the current snapshot stays in place.
func (s *Store) commit(ctx context.Context, op string, next Snapshot) error {
	if err := s.slot.write(ctx, next); err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "op", op), "cart.commit_failed", err)
		}
		return err
	}
	s.items = next
	s.metrics.IncMutation(op)
	s.metrics.SetItemCount(countItems(next))
	if s.logg != nil {
		s.logg.Debug(s.logg.WithField(ctx, "op", op), "cart.committed")
	}
	return nil
}

// notify runs outside the mutex so subscribers can re-read the snapshot and
// aggregates without deadlocking.
func (s *Store) notify(ctx context.Context) {
	start := time.Now()
	s.bus.Publish(ctx)
	s.metrics.ObserveNotify(time.Since(start))
}

func countItems(items Snapshot) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}
