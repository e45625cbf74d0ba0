package catalog

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AllCategories is the synthetic "no filtering" sentinel that heads the
// category list.
const AllCategories = "Все"

// maxBadges caps how many badges a product card carries; overflow keeps the
// first ones in source order.
const maxBadges = 3

// BadgeKind is the presentation category a badge label maps to.
type BadgeKind string

const (
	BadgeEco     BadgeKind = "eco"
	BadgeBio     BadgeKind = "bio"
	BadgeNew     BadgeKind = "new"
	BadgeHit     BadgeKind = "hit"
	BadgeDefault BadgeKind = "default"
)

// Badge is a short uppercase token shown on a product card.
type Badge struct {
	Label string
	Kind  BadgeKind
}

// Product is one catalog entry, immutable after parse.
//
// Name is the identity key: lookups use exact string equality and the cart
// references products by name. Two source rows sharing a name are
// indistinguishable downstream; the feed has no surrogate identifier.
type Product struct {
	Name     string
	RawPrice string
	Price    float64 // derived from RawPrice, 0 when unparsable
	Category string
	Image    string
	Badges   []Badge
}

// Catalog is the immutable, session-scoped ordered list of parsed products.
type Catalog struct {
	products []Product
	byName   map[string]int
}

// New builds a Catalog from parsed feed records. Expected fields are
// name, price, category, image and badges; missing fields come through as
// empty strings. When duplicate names occur the first row wins for lookups.
func New(records []Record) *Catalog {
	c := &Catalog{
		products: make([]Product, 0, len(records)),
		byName:   make(map[string]int, len(records)),
	}

	for _, rec := range records {
		p := Product{
			Name:     rec["name"],
			RawPrice: rec["price"],
			Price:    NumericPrice(rec["price"]),
			Category: strings.TrimSpace(rec["category"]),
			Image:    rec["image"],
			Badges:   ParseBadges(rec["badges"]),
		}
		c.products = append(c.products, p)
		if _, exists := c.byName[p.Name]; !exists {
			c.byName[p.Name] = len(c.products) - 1
		}
	}

	return c
}

// Len returns the number of products in the catalog.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Products returns the catalog contents in source order.
// The returned slice is a copy; the catalog itself never mutates.
func (c *Catalog) Products() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// FindByName returns the product with the exact given name.
// Absence is a normal outcome consumed by callers as "unavailable".
func (c *Catalog) FindByName(name string) (Product, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// PriceOf resolves a product name to its derived numeric price.
// Implements the cart package's price lookup.
func (c *Catalog) PriceOf(name string) (float64, bool) {
	p, ok := c.FindByName(name)
	if !ok {
		return 0, false
	}
	return p.Price, true
}

// Categories returns the distinct non-empty categories sorted with
// Russian-locale collation, with the AllCategories sentinel prepended.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, p := range c.products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		cats = append(cats, p.Category)
	}

	col := newCollator()
	sort.Slice(cats, func(i, j int) bool {
		return col.CompareString(cats[i], cats[j]) < 0
	})

	return append([]string{AllCategories}, cats...)
}

// newCollator returns a fresh Russian-locale collator.
// collate.Collator carries internal buffers, so callers get their own.
func newCollator() *collate.Collator {
	return collate.New(language.Russian)
}

// NumericPrice derives the numeric value of a raw price field by stripping
// every rune that is not a digit or a decimal point and parsing the rest.
// Unparsable values yield 0, never an error; this is a display-tolerant
// system.
func NumericPrice(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, raw)

	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseBadges extracts up to maxBadges badges from a pipe-delimited field.
// Tokens are trimmed, uppercased and mapped to a presentation kind.
func ParseBadges(raw string) []Badge {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var badges []Badge
	for _, tok := range strings.Split(raw, "|") {
		label := strings.ToUpper(strings.TrimSpace(tok))
		if label == "" {
			continue
		}
		badges = append(badges, Badge{Label: label, Kind: badgeKind(label)})
		if len(badges) == maxBadges {
			break
		}
	}
	return badges
}

// badgeKind maps an uppercase badge label to its presentation category.
func badgeKind(label string) BadgeKind {
	switch label {
	case "ECO":
		return BadgeEco
	case "BIO":
		return BadgeBio
	case "NEW":
		return BadgeNew
	case "HIT":
		return BadgeHit
	default:
		return BadgeDefault
	}
}
