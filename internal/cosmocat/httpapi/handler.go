package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dwikikusuma/cosmo-market/internal/cosmocat/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type CatLister interface {
	List(ctx context.Context) ([]domain.CosmoCat, error)
}

type Handler struct {
	log     *slog.Logger
	service CatLister
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service CatLister) *Handler {
	return &Handler{log: log, service: service, tracer: otel.Tracer("cosmocat-http")}
}

// Routes is mounted under /api/v1/cosmo-cats.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListCosmoCats")
	defer span.End()

	cats, err := h.service.List(ctx)
	if err != nil {
		span.RecordError(err)
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cats)
}
