// Package server assembles the HTTP surface of the market.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	cartapi "github.com/dwikikusuma/cosmo-market/internal/cart/httpapi"
	catalogapi "github.com/dwikikusuma/cosmo-market/internal/catalog/httpapi"
	cosmocatapi "github.com/dwikikusuma/cosmo-market/internal/cosmocat/httpapi"
	orderapi "github.com/dwikikusuma/cosmo-market/internal/order/httpapi"
	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/dwikikusuma/cosmo-market/pkg/feature"
	"github.com/dwikikusuma/cosmo-market/pkg/httpx"
	"github.com/dwikikusuma/cosmo-market/pkg/idempotency"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Deps struct {
	Log       *slog.Logger
	Carts     cartapi.CartService
	Orders    orderapi.OrderService
	Products  catalogapi.ProductService
	CosmoCats cosmocatapi.CatLister
	Gate      *feature.Gate
	// Idempotency is optional; nil disables Idempotency-Key handling.
	Idempotency idempotency.Store
	// Ready backs /readyz, typically a database ping.
	Ready func(ctx context.Context) error
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	onError := func(w http.ResponseWriter, r *http.Request, err error) {
		httpx.WriteError(w, r, log, err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.AccessLog(log))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		onError(w, r, apperr.New(apperr.KindNotFound, "No route for "+r.Method+" "+r.URL.Path))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			log.WarnContext(ctx, "readiness check failed", slog.Any("err", err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if d.Idempotency != nil {
			r.Use(idempotency.Middleware(d.Idempotency, log))
		}

		r.Mount("/carts", cartapi.NewHandler(log, d.Carts).Routes())
		r.Mount("/orders", orderapi.NewHandler(log, d.Orders).Routes())
		r.Mount("/products", catalogapi.NewHandler(log, d.Products).Routes())
		r.Mount("/cosmo-cats", d.Gate.Require(feature.CosmoCats, onError)(cosmocatapi.NewHandler(log, d.CosmoCats).Routes()))
		r.Mount("/features", feature.NewHandler(log, d.Gate).Routes())
	})

	return r
}
