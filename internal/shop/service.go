// Package shop ties the feed, catalog, cart and order composer together
// behind one service the web layer calls. It owns the current catalog
// snapshot and the last feed load error.
package shop

import (
	"context"
	"log/slog"
	"sync"

	"github.com/duken/storefront/internal/cart"
	"github.com/duken/storefront/internal/catalog"
	"github.com/duken/storefront/internal/config"
	"github.com/duken/storefront/internal/order"
)

// Service provides the storefront business logic: catalog loading and
// views, cart mutations, and order composition.
type Service struct {
	fetcher  *catalog.Fetcher
	feedURL  string
	delim    string
	store    *cart.Store
	composer *order.Composer

	mu      sync.RWMutex
	catalog *catalog.Catalog
	loadErr error
}

// NewService wires the service from config and an already-restored cart
// store. The catalog starts empty; call LoadCatalog before serving views.
func NewService(cfg *config.Config, store *cart.Store) *Service {
	return &Service{
		fetcher:  catalog.NewFetcher(cfg.Catalog.FetchTimeout),
		feedURL:  cfg.Catalog.FeedURL,
		delim:    cfg.Catalog.Delimiter,
		store:    store,
		composer: order.NewComposer(cfg.Order.ServiceBase, cfg.Order.Address),
	}
}

// LoadCatalog fetches and parses the product feed, swapping in a fresh
// catalog snapshot on success. On failure the error is recorded for the
// render surface; a previously loaded snapshot keeps serving, so a failed
// reload degrades to stale data instead of a blank page.
func (s *Service) LoadCatalog(ctx context.Context) error {
	text, err := s.fetcher.Fetch(ctx, s.feedURL)
	if err != nil {
		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		slog.Error("catalog load failed", "url", s.feedURL, "error", err)
		return err
	}

	cat := catalog.New(catalog.Parse(text, s.delim))

	s.mu.Lock()
	s.catalog = cat
	s.loadErr = nil
	s.mu.Unlock()

	// Stale cart entries resolve against the new snapshot from here on.
	s.store.SetLookup(cat)

	slog.Info("catalog loaded", "url", s.feedURL, "products", cat.Len())
	return nil
}

// Catalog returns the current snapshot, which is nil until the first
// successful load.
func (s *Service) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Products derives the filtered/sorted product view for a selection.
// While no snapshot has ever loaded, the recorded feed error is returned so
// the caller can render a visible error state.
func (s *Service) Products(sel catalog.Selection) ([]catalog.Product, error) {
	s.mu.RLock()
	cat, loadErr := s.catalog, s.loadErr
	s.mu.RUnlock()

	if cat == nil {
		return nil, loadErr
	}
	return catalog.ApplyView(cat, sel), nil
}

// Categories returns the category options, sentinel first.
func (s *Service) Categories() ([]string, error) {
	s.mu.RLock()
	cat, loadErr := s.catalog, s.loadErr
	s.mu.RUnlock()

	if cat == nil {
		return nil, loadErr
	}
	return cat.Categories(), nil
}

// Cart exposes the cart store for sink registration.
func (s *Service) Cart() *cart.Store {
	return s.store
}

// AddToCart increments the quantity for name. The name is not checked
// against the catalog: a stale name simply prices at zero.
func (s *Service) AddToCart(ctx context.Context, name string) cart.Summary {
	return s.store.Add(ctx, name)
}

// DecrementCart lowers the quantity for name, removing the entry at zero.
func (s *Service) DecrementCart(ctx context.Context, name string) cart.Summary {
	return s.store.Decrement(ctx, name)
}

// ClearCart empties the cart.
func (s *Service) ClearCart(ctx context.Context) cart.Summary {
	return s.store.Clear(ctx)
}

// CartSummary recomputes the current cart aggregates.
func (s *Service) CartSummary() cart.Summary {
	return s.store.Summary()
}

// ComposeOrder renders the current cart as an order message for the
// messaging sink. Guards (empty cart, unconfigured address) surface as
// typed errors the web layer maps to user warnings.
func (s *Service) ComposeOrder(contact order.Contact) (order.Message, error) {
	msg, err := s.composer.Compose(s.store.Snapshot(), s.Catalog(), contact)
	if err != nil {
		return order.Message{}, err
	}
	slog.Info("order composed", "order_id", msg.ID, "items", s.store.Summary().Count)
	return msg, nil
}
