// Package web provides the HTTP server and JSON handlers for the storefront.
//
// Every render sink the core writes to is served from here: the product
// grid, the category/sort selectors, the cart listing, the cart badge and
// the order message link. Handlers map one-to-one onto the input events the
// UI emits (selection-changed, add-clicked, decrement-clicked, clear-clicked,
// order-clicked).
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/duken/storefront/internal/config"
	"github.com/duken/storefront/internal/shop"
	ourmw "github.com/duken/storefront/internal/web/middleware"
)

// Server is the HTTP server for the storefront.
type Server struct {
	service *shop.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	events  *cartBroadcaster
}

// NewServer creates a Server and registers the SSE broadcaster as a cart
// render sink.
func NewServer(service *shop.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
		events:  newCartBroadcaster(),
	}
	service.Cart().RegisterSink(s.events)
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(ourmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(ourmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Catalog views
		r.Get("/products", s.handleProducts)
		r.Get("/categories", s.handleCategories)

		// Cart state and mutations
		r.Get("/cart", s.handleCartView)
		r.Get("/cart/badge", s.handleCartBadge)
		r.Get("/cart/events", s.handleCartEvents)
		r.Post("/cart/add", s.handleCartAdd)
		r.Post("/cart/decrement", s.handleCartDecrement)
		r.Post("/cart/clear", s.handleCartClear)

		// Order export
		r.Post("/order", s.handleComposeOrder)

		// Admin: refetch the feed
		r.With(ourmw.APIKeyAuth(&s.cfg.Security)).
			Post("/catalog/reload", s.handleCatalogReload)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout, // 0 keeps SSE streams open
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1,
			lastReset: time.Now(),
		}
		return true
	}

	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			ip = realIP
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "60")
			s := http.StatusTooManyRequests
			respondErrorJSON(w, userMessage{
				Message: "Слишком много запросов",
				Action:  "Подождите немного и попробуйте снова",
				Code:    "RATE001",
			}, s)
			return
		}

		next.ServeHTTP(w, r)
	})
}
