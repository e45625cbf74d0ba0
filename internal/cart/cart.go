// Package cart owns the persisted shopping cart: an ordered mapping from
// product name to quantity, every mutation flowing through the Store.
//
// Product name is the identity key for compatibility with the feed, which
// has no surrogate identifier. Two catalog rows sharing a name are
// indistinguishable here; that collision risk is a known limitation.
package cart

import (
	"encoding/json"
	"fmt"

	"github.com/iancoleman/orderedmap"
)

// Cart is the mapping from product name to quantity. Quantities are always
// >= 1: a quantity dropping to zero removes the entry instead. Entry order
// is insertion order and survives a JSON round-trip, which keeps the order
// message lines deterministic.
type Cart struct {
	m *orderedmap.OrderedMap
}

// NewCart returns an empty cart.
func NewCart() Cart {
	return Cart{m: orderedmap.New()}
}

// Quantity returns the stored quantity for name, or 0 when absent.
func (c Cart) Quantity(name string) int {
	v, ok := c.m.Get(name)
	if !ok {
		return 0
	}
	q, _ := v.(int)
	return q
}

// Names returns the product names in entry order.
func (c Cart) Names() []string {
	return c.m.Keys()
}

// Len returns the number of distinct products in the cart.
func (c Cart) Len() int {
	return len(c.m.Keys())
}

// Count returns the total number of items: the sum of all quantities.
func (c Cart) Count() int {
	total := 0
	for _, name := range c.m.Keys() {
		total += c.Quantity(name)
	}
	return total
}

// clone returns an independent copy preserving entry order.
func (c Cart) clone() Cart {
	out := NewCart()
	for _, name := range c.m.Keys() {
		out.m.Set(name, c.Quantity(name))
	}
	return out
}

// set stores a quantity, removing the entry when qty drops to zero or below.
// Zero is never stored: "quantity 0" and "absent" are the same state.
func (c Cart) set(name string, qty int) {
	if qty <= 0 {
		c.m.Delete(name)
		return
	}
	c.m.Set(name, qty)
}

// MarshalJSON encodes the cart as a JSON object in entry order.
func (c Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.m)
}

// decodeCart parses a persisted cart payload. Entries with non-integer or
// non-positive quantities are dropped; any structural failure is reported so
// the caller can fall back to an empty cart.
func decodeCart(payload []byte) (Cart, error) {
	om := orderedmap.New()
	if err := json.Unmarshal(payload, om); err != nil {
		return Cart{}, fmt.Errorf("cart payload: %w", err)
	}

	c := NewCart()
	for _, name := range om.Keys() {
		v, _ := om.Get(name)
		f, ok := v.(float64)
		if !ok || f != float64(int(f)) || int(f) <= 0 {
			continue
		}
		c.m.Set(name, int(f))
	}
	return c, nil
}
