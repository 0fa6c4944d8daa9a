package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// RequestObserver records per-route request metrics.
type RequestObserver interface {
	ObserveRequest(route string, status int, elapsed time.Duration)
}

type RouterConfig struct {
	RequestTimeout time.Duration
	// Metrics serves /metrics when set.
	Metrics  http.Handler
	Observer RequestObserver
}

func NewRouter(h *Handler, auth *Authenticator, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger, cfg.Observer))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Get("/products", h.ListProducts)
		r.Get("/products/{productID}", h.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuthenticated)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Get("/count", h.CartCount)
				r.Post("/items", h.AddItem)
				r.Patch("/items/{lineID}", h.UpdateQuantity)
				r.Delete("/items/{lineID}", h.RemoveItem)
			})

			r.Post("/checkout", h.Checkout)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.OrderHistory)
				r.Get("/{orderID}", h.GetOrder)
				r.Get("/{orderID}/confirmation", h.OrderConfirmation)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/orders", h.ListOrders)
				r.Get("/orders/pending/count", h.PendingCount)
				r.Post("/orders/{orderID}/ship", h.ShipOrder)

				r.Post("/products", h.CreateProduct)
				r.Put("/products/{productID}", h.UpdateProduct)
				r.Delete("/products/{productID}", h.DeleteProduct)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}

func requestLogger(logger *zap.Logger, observer RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			elapsed := time.Since(start)
			if observer != nil {
				observer.ObserveRequest(route, status, elapsed)
			}

			logger.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("elapsed", elapsed))
		})
	}
}
