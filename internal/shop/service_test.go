package shop

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duken/storefront/internal/cart"
	"github.com/duken/storefront/internal/catalog"
	"github.com/duken/storefront/internal/config"
	"github.com/duken/storefront/internal/order"
)

const testFeed = "name,price,category,image,badges\n" +
	"Яблоки,500,Фрукты,apple.jpg,eco\n" +
	"Хлеб,300,Выпечка,,\n" +
	"Молоко,400,Молочное,,bio\n"

func testConfig(feedURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Catalog.FeedURL = feedURL
	cfg.Catalog.Delimiter = ","
	cfg.Catalog.FetchTimeout = 5 * time.Second
	cfg.Order.ServiceBase = "https://wa.me"
	cfg.Order.Address = "77001234567"
	return cfg
}

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	srv := feedServer(t, testFeed)
	store := cart.NewStore(cart.NewMemStorage())
	svc := NewService(testConfig(srv.URL), store)
	require.NoError(t, svc.LoadCatalog(context.Background()))
	return svc
}

func TestLoadCatalogSwapsSnapshot(t *testing.T) {
	svc := newTestService(t)

	cat := svc.Catalog()
	require.NotNil(t, cat)
	assert.Equal(t, 3, cat.Len())
}

func TestLoadCatalogFailureKeepsOldSnapshot(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(testFeed))
	}))
	t.Cleanup(srv.Close)

	svc := NewService(testConfig(srv.URL), cart.NewStore(cart.NewMemStorage()))
	require.NoError(t, svc.LoadCatalog(context.Background()))

	fail.Store(true)
	err := svc.LoadCatalog(context.Background())
	require.Error(t, err)

	// Stale data keeps serving after a failed reload.
	products, err := svc.Products(catalog.Selection{})
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestProductsBeforeFirstLoadReturnsFeedError(t *testing.T) {
	srv := feedServer(t, "")
	srv.Close()

	svc := NewService(testConfig(srv.URL), cart.NewStore(cart.NewMemStorage()))
	require.Error(t, svc.LoadCatalog(context.Background()))

	_, err := svc.Products(catalog.Selection{})
	var fetchErr *catalog.SourceFetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestProductsAppliesSelection(t *testing.T) {
	svc := newTestService(t)

	products, err := svc.Products(catalog.Selection{Category: "Фрукты"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Яблоки", products[0].Name)
}

func TestCategories(t *testing.T) {
	svc := newTestService(t)

	cats, err := svc.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{catalog.AllCategories, "Выпечка", "Молочное", "Фрукты"}, cats)
}

func TestCartFlowAggregates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.AddToCart(ctx, "Яблоки")
	svc.AddToCart(ctx, "Яблоки")
	sum := svc.AddToCart(ctx, "Хлеб")

	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, 1300.0, sum.Total)

	sum = svc.DecrementCart(ctx, "Яблоки")
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, 800.0, sum.Total)

	sum = svc.ClearCart(ctx)
	assert.Equal(t, 0, sum.Count)
	assert.Equal(t, 0.0, sum.Total)
}

func TestReloadRepricesCartEntries(t *testing.T) {
	feed := atomic.Pointer[string]{}
	first := testFeed
	feed.Store(&first)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(*feed.Load()))
	}))
	t.Cleanup(srv.Close)

	svc := NewService(testConfig(srv.URL), cart.NewStore(cart.NewMemStorage()))
	ctx := context.Background()
	require.NoError(t, svc.LoadCatalog(ctx))

	svc.AddToCart(ctx, "Яблоки")
	assert.Equal(t, 500.0, svc.CartSummary().Total)

	// The product disappears from the feed; the entry stays but prices at zero.
	second := "name,price,category\nХлеб,300,Выпечка\n"
	feed.Store(&second)
	require.NoError(t, svc.LoadCatalog(ctx))

	sum := svc.CartSummary()
	assert.Equal(t, 1, sum.Count)
	assert.Equal(t, 0.0, sum.Total)
	require.Len(t, sum.Entries, 1)
	assert.False(t, sum.Entries[0].Available)
}

func TestComposeOrderEndToEnd(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.AddToCart(ctx, "Яблоки")
	svc.AddToCart(ctx, "Хлеб")

	msg, err := svc.ComposeOrder(order.Contact{Name: "Айгерим", Phone: "+77007654321"})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Contains(t, msg.Text, "Яблоки")
	assert.Contains(t, msg.URI, "https://wa.me/77001234567?text=")
}

func TestComposeOrderEmptyCart(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ComposeOrder(order.Contact{})
	assert.Error(t, err)
}
