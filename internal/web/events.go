package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/duken/storefront/internal/cart"
	"github.com/duken/storefront/internal/logging"
)

// cartBroadcaster fans cart updates out to connected SSE clients. It is
// registered with the cart store as a render sink, so every mutation that
// reaches the store reaches every open stream.
type cartBroadcaster struct {
	mu   sync.Mutex
	subs map[chan cart.Summary]struct{}
}

func newCartBroadcaster() *cartBroadcaster {
	return &cartBroadcaster{subs: make(map[chan cart.Summary]struct{})}
}

// CartUpdated implements cart.Sink. Sends never block the mutating request:
// a subscriber that cannot keep up just misses the update and catches the
// next one.
func (b *cartBroadcaster) CartUpdated(sum cart.Summary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- sum:
		default:
		}
	}
}

// subscribe registers a new listener channel.
func (b *cartBroadcaster) subscribe() chan cart.Summary {
	ch := make(chan cart.Summary, 8)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// unsubscribe removes a listener channel.
func (b *cartBroadcaster) unsubscribe(ch chan cart.Summary) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// handleCartEvents streams cart view-models over Server-Sent Events. The
// current state is sent immediately on connect so late subscribers render
// without waiting for a mutation.
func (s *Server) handleCartEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.events.subscribe()
	defer s.events.unsubscribe(ch)

	log := logging.FromContext(r.Context())
	log.Debug("cart event stream opened")

	if err := writeCartEvent(w, s.service.CartSummary()); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			log.Debug("cart event stream closed")
			return
		case sum := <-ch:
			if err := writeCartEvent(w, sum); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

func writeCartEvent(w http.ResponseWriter, sum cart.Summary) error {
	data, err := json.Marshal(newCartView(sum))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
