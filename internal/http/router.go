package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Catalog  CatalogService
	Cart     CartService
	Wishlist WishlistService
	Checkout CheckoutService
	Orders   OrderService
	Profile  ProfileService

	// Ping backs /health; a non-nil error answers 503.
	Ping func(ctx context.Context) error

	Logger             *zap.Logger
	JWTSecret          []byte
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = 1 << 20 // 1MB
	}

	products := NewProductHandler(cfg.Catalog, cfg.RequestTimeout)
	cart := NewCartHandler(cfg.Cart, cfg.RequestTimeout)
	wishlist := NewWishlistHandler(cfg.Wishlist, cfg.RequestTimeout)
	orders := NewOrdersHandler(cfg.Checkout, cfg.Orders, cfg.RequestTimeout)
	profile := NewProfileHandler(cfg.Profile, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))

	r.Get("/health", healthHandler(cfg.Ping))

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Get("/{productId}", products.Get)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.JWTSecret))

			r.Get("/profile", profile.Get)
			r.Put("/profile", profile.Update)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cart.GetCart)
				r.Post("/", cart.AddItem)
				r.Delete("/clear", cart.ClearCart)
				r.Put("/{productId}", cart.UpdateQuantity)
				r.Delete("/{productId}", cart.RemoveItem)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlist.Get)
				r.Post("/", wishlist.Add)
				r.Post("/toggle", wishlist.Toggle)
				r.Delete("/{productId}", wishlist.Remove)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", orders.PlaceOrder)
				r.Get("/my-orders", orders.ListOrders)
				r.Get("/{orderId}", orders.GetOrder)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
