package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Storage is the persistent byte-string store the cart lives in: a single
// value under one fixed key. Load returns (nil, nil) when nothing has been
// persisted yet.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
}

// PriceLookup resolves a product name to its current unit price.
// The second return is false when the product is no longer in the catalog;
// such entries price at zero rather than failing.
type PriceLookup interface {
	PriceOf(name string) (float64, bool)
}

// Entry is one cart line in a pushed summary.
type Entry struct {
	Name      string
	Qty       int
	UnitPrice float64
	Available bool
}

// Summary is the recomputed aggregate pushed to render sinks after every
// mutation.
type Summary struct {
	Count   int
	Total   float64
	Entries []Entry
}

// Sink is a render target the store pushes summaries to. Notification is
// synchronous and fire-and-forget; implementations must not block.
type Sink interface {
	CartUpdated(Summary)
}

// Store owns the process-wide cart. Every mutation follows the same
// sequence: mutate in memory, persist the whole serialized cart
// (last-write-wins), then push the recomputed summary to every registered
// sink. Persistence is best-effort; a storage failure degrades durability,
// never the in-memory state.
type Store struct {
	storage Storage

	mu     sync.Mutex
	cart   Cart
	lookup PriceLookup
	sinks  []Sink
}

// NewStore creates a Store backed by the given storage, starting empty.
// Call Restore to pick up a previously persisted cart.
func NewStore(storage Storage) *Store {
	return &Store{
		storage: storage,
		cart:    NewCart(),
	}
}

// Restore loads the persisted cart. A missing key, malformed payload or any
// read failure yields an empty cart; corruption is logged and swallowed,
// never surfaced as an error.
func (s *Store) Restore(ctx context.Context) {
	payload, err := s.storage.Load(ctx)
	if err != nil {
		slog.Warn("cart restore failed, starting empty", "error", err)
		return
	}
	if len(payload) == 0 {
		return
	}

	c, err := decodeCart(payload)
	if err != nil {
		slog.Warn("cart payload corrupted, starting empty", "error", err)
		return
	}

	s.mu.Lock()
	s.cart = c
	s.mu.Unlock()
}

// SetLookup swaps the price resolver, typically after a catalog (re)load.
// Cart entries whose products vanished price at zero until the next load.
func (s *Store) SetLookup(l PriceLookup) {
	s.mu.Lock()
	s.lookup = l
	s.mu.Unlock()
}

// RegisterSink adds a render target that receives a summary after every
// mutation.
func (s *Store) RegisterSink(sink Sink) {
	s.mu.Lock()
	s.sinks = append(s.sinks, sink)
	s.mu.Unlock()
}

// Add increments the quantity for name by one, creating the entry at 1.
func (s *Store) Add(ctx context.Context, name string) Summary {
	return s.mutate(ctx, func(c Cart) {
		c.set(name, c.Quantity(name)+1)
	})
}

// Decrement lowers the quantity for name by one; the entry is removed
// entirely when the quantity would drop to zero or below.
func (s *Store) Decrement(ctx context.Context, name string) Summary {
	return s.mutate(ctx, func(c Cart) {
		c.set(name, c.Quantity(name)-1)
	})
}

// Clear replaces the cart with an empty mapping.
func (s *Store) Clear(ctx context.Context) Summary {
	s.mu.Lock()
	s.cart = NewCart()
	s.mu.Unlock()
	return s.finishMutation(ctx)
}

// Snapshot returns an independent copy of the current cart.
func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.clone()
}

// Summary recomputes the current aggregates without mutating anything.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

// mutate applies fn to the cart, then persists and notifies.
func (s *Store) mutate(ctx context.Context, fn func(Cart)) Summary {
	s.mu.Lock()
	fn(s.cart)
	s.mu.Unlock()
	return s.finishMutation(ctx)
}

// finishMutation persists the full cart state and fans the recomputed
// summary out to the sinks. Runs after the in-memory mutation is already
// committed, so failures here cannot undo it.
func (s *Store) finishMutation(ctx context.Context) Summary {
	s.mu.Lock()
	payload, err := json.Marshal(s.cart)
	sum := s.summaryLocked()
	sinks := make([]Sink, len(s.sinks))
	copy(sinks, s.sinks)
	s.mu.Unlock()

	if err != nil {
		slog.Warn("cart serialization failed, skipping persist", "error", err)
	} else if err := s.storage.Save(ctx, payload); err != nil {
		slog.Warn("cart persistence failed", "error", err)
	}

	for _, sink := range sinks {
		sink.CartUpdated(sum)
	}

	return sum
}

// summaryLocked recomputes aggregates; callers hold s.mu.
func (s *Store) summaryLocked() Summary {
	sum := Summary{Entries: make([]Entry, 0, s.cart.Len())}
	for _, name := range s.cart.Names() {
		qty := s.cart.Quantity(name)
		price, available := 0.0, false
		if s.lookup != nil {
			price, available = s.lookup.PriceOf(name)
		}
		sum.Entries = append(sum.Entries, Entry{
			Name:      name,
			Qty:       qty,
			UnitPrice: price,
			Available: available,
		})
		sum.Count += qty
		sum.Total += float64(qty) * price
	}
	return sum
}

// Count returns the total number of items in a cart: the sum of all stored
// quantities, not the number of distinct products.
func Count(c Cart) int {
	return c.Count()
}

// Total sums quantity times resolved unit price over every cart entry.
// Entries whose product is missing from the lookup contribute zero.
func Total(c Cart, lookup PriceLookup) float64 {
	var total float64
	for _, name := range c.Names() {
		if lookup == nil {
			continue
		}
		if price, ok := lookup.PriceOf(name); ok {
			total += float64(c.Quantity(name)) * price
		}
	}
	return total
}
