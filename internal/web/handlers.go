package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/duken/storefront/internal/cart"
	"github.com/duken/storefront/internal/catalog"
	"github.com/duken/storefront/internal/logging"
	"github.com/duken/storefront/internal/money"
	"github.com/duken/storefront/internal/order"
)

// productView is the view-model consumed by the product-grid sink.
type productView struct {
	Name     string      `json:"name"`
	Price    string      `json:"price"`
	Category string      `json:"category"`
	Image    string      `json:"image,omitempty"`
	Badges   []badgeView `json:"badges,omitempty"`
}

type badgeView struct {
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

// cartEntryView is one line of the cart-listing sink.
type cartEntryView struct {
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
	Available bool   `json:"available"`
}

// cartView is the full cart-listing view-model.
type cartView struct {
	Entries        []cartEntryView `json:"entries"`
	Count          int             `json:"count"`
	CountLabel     string          `json:"countLabel"`
	Total          float64         `json:"total"`
	FormattedTotal string          `json:"formattedTotal"`
}

// handleProducts serves the product grid for the current view selection.
// While the feed has never loaded, the recorded fetch error renders as a
// visible error state instead of an empty grid.
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	sel := catalog.Selection{
		Category: r.URL.Query().Get("category"),
		Sort:     catalog.ParseSortMode(r.URL.Query().Get("sort")),
	}

	products, err := s.service.Products(sel)
	if err != nil {
		respondError(w, r, err, http.StatusBadGateway)
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, newProductView(p))
	}

	writeJSON(w, r, map[string]interface{}{"products": views})
}

// handleCategories serves the selector options, sentinel first.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.service.Categories()
	if err != nil {
		respondError(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, r, map[string]interface{}{
		"categories": cats,
		"sorts": []string{
			string(catalog.SortDefault),
			string(catalog.SortPriceAsc),
			string(catalog.SortPriceDesc),
			string(catalog.SortNameAsc),
		},
	})
}

// handleCartView serves the cart-listing view-model.
func (s *Server) handleCartView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, newCartView(s.service.CartSummary()))
}

// handleCartBadge serves the badge sink: a single item count.
func (s *Server) handleCartBadge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]int{"count": s.service.CartSummary().Count})
}

// cartMutationRequest names the product a cart button click refers to.
type cartMutationRequest struct {
	Name string `json:"name"`
}

// handleCartAdd handles the add-clicked event.
func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeMutation(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, newCartView(s.service.AddToCart(r.Context(), name)))
}

// handleCartDecrement handles the decrement-clicked event.
func (s *Server) handleCartDecrement(w http.ResponseWriter, r *http.Request) {
	name, ok := decodeMutation(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, newCartView(s.service.DecrementCart(r.Context(), name)))
}

// handleCartClear handles the clear-clicked event.
func (s *Server) handleCartClear(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, newCartView(s.service.ClearCart(r.Context())))
}

// decodeMutation parses a cart mutation body and rejects a missing name.
func decodeMutation(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req cartMutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorJSON(w, userMessage{
			Message: "Некорректный запрос",
			Code:    "REQ001",
		}, http.StatusBadRequest)
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondErrorJSON(w, userMessage{
			Message: "Не указан товар",
			Code:    "REQ002",
		}, http.StatusBadRequest)
		return "", false
	}
	return name, true
}

// orderRequest carries the optional contact fields for an order.
type orderRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Comment string `json:"comment"`
}

// handleComposeOrder renders the cart into an order message and returns the
// messaging-service URI. Guard failures (empty cart, missing address) are
// user warnings with 422, not server errors.
func (s *Server) handleComposeOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if r.Body != nil {
		// Contact fields are all optional; an empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	msg, err := s.service.ComposeOrder(order.Contact{
		Name:    req.Name,
		Phone:   req.Phone,
		Comment: req.Comment,
	})
	if err != nil {
		respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, r, map[string]string{
		"orderId": msg.ID,
		"text":    msg.Text,
		"uri":     msg.URI,
	})
}

// handleCatalogReload refetches the product feed.
func (s *Server) handleCatalogReload(w http.ResponseWriter, r *http.Request) {
	if err := s.service.LoadCatalog(r.Context()); err != nil {
		respondError(w, r, err, http.StatusBadGateway)
		return
	}

	logging.FromContext(r.Context()).Info("catalog reloaded",
		"products", s.service.Catalog().Len())
	writeJSON(w, r, map[string]interface{}{
		"reloaded": true,
		"products": s.service.Catalog().Len(),
	})
}

// newProductView formats a product for the grid sink.
func newProductView(p catalog.Product) productView {
	v := productView{
		Name:     p.Name,
		Price:    money.Format(p.RawPrice),
		Category: p.Category,
		Image:    p.Image,
	}
	for _, b := range p.Badges {
		v.Badges = append(v.Badges, badgeView{Label: b.Label, Kind: string(b.Kind)})
	}
	return v
}

// newCartView formats a cart summary for the listing sink.
func newCartView(sum cart.Summary) cartView {
	view := cartView{
		Entries:        make([]cartEntryView, 0, len(sum.Entries)),
		Count:          sum.Count,
		CountLabel:     itemCountLabel(sum.Count),
		Total:          sum.Total,
		FormattedTotal: money.FormatAmount(sum.Total),
	}
	for _, e := range sum.Entries {
		view.Entries = append(view.Entries, cartEntryView{
			Name:      e.Name,
			Qty:       e.Qty,
			UnitPrice: money.FormatAmount(e.UnitPrice),
			LineTotal: money.FormatAmount(float64(e.Qty) * e.UnitPrice),
			Available: e.Available,
		})
	}
	return view
}

// itemCountLabel renders the item count with the correct Russian plural.
func itemCountLabel(n int) string {
	word := "товаров"
	switch {
	case n%100 >= 11 && n%100 <= 14:
		// 11-14 always take the genitive plural
	case n%10 == 1:
		word = "товар"
	case n%10 >= 2 && n%10 <= 4:
		word = "товара"
	}
	return strconv.Itoa(n) + " " + word
}
