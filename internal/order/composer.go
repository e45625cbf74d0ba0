// Package order renders the cart into a human-readable order message and
// the destination URI for the external messaging service.
package order

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/duken/storefront/internal/cart"
	"github.com/duken/storefront/internal/catalog"
	"github.com/duken/storefront/internal/money"
)

// minAddressLength is the only validation the destination address gets.
const minAddressLength = 10

// unavailableLabel marks cart entries whose product vanished from the feed.
const unavailableLabel = "(нет в наличии)"

// ErrEmptyCart refuses composing when there is nothing to order.
// Surfaced to the shopper as a warning, never as a failure.
var ErrEmptyCart = errors.New("cart is empty")

// ConfigError reports a missing or malformed destination address.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "order address: " + e.Reason
}

// Contact carries the optional free-text fields the shopper fills in.
// Each line is included only when non-empty after trimming.
type Contact struct {
	Name    string
	Phone   string
	Comment string
}

// Message is a composed order: the full text and the opaque destination URI
// the caller opens in the messaging service.
type Message struct {
	ID   string
	Text string
	URI  string
}

// Composer builds order messages against a configured destination.
type Composer struct {
	serviceBase string
	address     string
}

// NewComposer creates a Composer for the given messaging service base URL
// and destination address. The address is validated at compose time, not
// here, so a misconfigured deployment still starts and degrades to a
// user-visible warning.
func NewComposer(serviceBase, address string) *Composer {
	return &Composer{
		serviceBase: strings.TrimSuffix(serviceBase, "/"),
		address:     strings.TrimSpace(address),
	}
}

// Compose renders the cart into an order message. It refuses an empty cart
// (ErrEmptyCart) and a missing or too-short destination address
// (*ConfigError); both are warnings for the shopper, not failures.
//
// Lines follow cart entry order. Unit prices come from the catalog's raw
// price field via the shared money formatter; entries whose product is gone
// from the catalog are labelled unavailable and priced at zero.
func (c *Composer) Compose(crt cart.Cart, cat *catalog.Catalog, contact Contact) (Message, error) {
	if crt.Count() == 0 {
		return Message{}, ErrEmptyCart
	}
	if cat == nil {
		// Feed never loaded this session: every entry prices as unavailable.
		cat = catalog.New(nil)
	}
	if c.address == "" {
		return Message{}, &ConfigError{Reason: "not configured"}
	}
	if len(c.address) < minAddressLength {
		return Message{}, &ConfigError{Reason: fmt.Sprintf("shorter than %d characters", minAddressLength)}
	}

	var b strings.Builder
	b.WriteString("Новый заказ с сайта\n")

	if name := strings.TrimSpace(contact.Name); name != "" {
		b.WriteString("Имя: " + name + "\n")
	}
	if phone := strings.TrimSpace(contact.Phone); phone != "" {
		b.WriteString("Телефон: " + phone + "\n")
	}

	b.WriteString("\n")
	for _, name := range crt.Names() {
		qty := crt.Quantity(name)
		b.WriteString(entryLine(name, qty, cat))
	}

	b.WriteString("\nИтого: " + money.FormatAmount(cart.Total(crt, cat)) + "\n")

	if comment := strings.TrimSpace(contact.Comment); comment != "" {
		b.WriteString("\nКомментарий: " + comment + "\n")
	}

	text := b.String()
	return Message{
		ID:   uuid.New().String(),
		Text: text,
		URI:  c.serviceBase + "/" + c.address + "?text=" + encodeText(text),
	}, nil
}

// entryLine renders one cart entry as "name — qty × unit = lineTotal".
func entryLine(name string, qty int, cat *catalog.Catalog) string {
	p, ok := cat.FindByName(name)
	if !ok {
		return fmt.Sprintf("%s %s — %d × %s = %s\n",
			name, unavailableLabel, qty,
			money.FormatAmount(0), money.FormatAmount(0))
	}
	return fmt.Sprintf("%s — %d × %s = %s\n",
		name, qty,
		money.Format(p.RawPrice),
		money.FormatAmount(float64(qty)*p.Price))
}

// encodeText percent-encodes the message for the ?text= query parameter.
// Spaces become %20 rather than '+', matching what messaging deep links
// expect.
func encodeText(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
