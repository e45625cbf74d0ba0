package catalog

import (
	"sort"
	"strings"
)

// SortMode enumerates the supported product orderings.
type SortMode string

const (
	SortDefault   SortMode = "default"    // source order
	SortPriceAsc  SortMode = "price_asc"  // derived numeric price, ascending
	SortPriceDesc SortMode = "price_desc" // derived numeric price, descending
	SortNameAsc   SortMode = "name_asc"   // locale-aware name ordering
)

// ParseSortMode maps a request value to a SortMode; unknown values fall back
// to source order.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortPriceAsc, SortPriceDesc, SortNameAsc:
		return SortMode(s)
	default:
		return SortDefault
	}
}

// Selection is the transient user-chosen view: a category filter plus a sort
// mode. It is never persisted and resets on reload.
type Selection struct {
	Category string
	Sort     SortMode
}

// ApplyView derives a filtered, sorted product sequence from the catalog.
// It is pure: the same (catalog, selection) always yields the same output
// and the catalog is never mutated. Sorting is stable, so equal keys keep
// their source order.
func ApplyView(c *Catalog, sel Selection) []Product {
	out := c.Products()

	cat := strings.TrimSpace(sel.Category)
	if cat != "" && cat != AllCategories {
		filtered := out[:0]
		for _, p := range out {
			if p.Category == cat {
				filtered = append(filtered, p)
			}
		}
		out = filtered
	}

	switch sel.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortNameAsc:
		col := newCollator()
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Name, out[j].Name) < 0
		})
	}

	return out
}
