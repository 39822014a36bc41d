package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dwikikusuma/cosmo-market/internal/catalog/app"
	"github.com/dwikikusuma/cosmo-market/internal/catalog/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/dwikikusuma/cosmo-market/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ProductService interface {
	CreateProduct(ctx context.Context, in app.CreateProductInput) (domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error)
	GetProductByName(ctx context.Context, name string) (domain.Product, error)
	ListProducts(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch domain.ProductPatch) (domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	log     *slog.Logger
	service ProductService
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service ProductService) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("catalog-http"),
	}
}

type createProductReq struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Category          domain.Category `json:"category"`
	AvailableQuantity int32           `json:"availableQuantity"`
	Price             decimal.Decimal `json:"price"`
}

type listProductsResp struct {
	Items      []domain.Product `json:"items"`
	NextCursor string           `json:"nextCursor,omitempty"`
}

// Routes is mounted under /api/v1/products.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/by-name/{name}", h.getByName)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	var req createProductReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, span, err)
		return
	}

	p, err := h.service.CreateProduct(ctx, app.CreateProductInput{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		AvailableQuantity: req.AvailableQuantity,
		Price:             req.Price,
	})
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	span.SetAttributes(attribute.String("product.id", p.ID.String()))
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListProducts")
	defer span.End()

	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(w, r, span, apperr.Validation("invalid limit %q", raw))
			return
		}
		limit = n
	}

	items, next, err := h.service.ListProducts(ctx, q.Get("q"), limit, q.Get("cursor"))
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	if items == nil {
		items = []domain.Product{}
	}
	httpx.WriteJSON(w, http.StatusOK, listProductsResp{Items: items, NextCursor: next})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetProduct")
	defer span.End()

	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	p, err := h.service.GetProduct(ctx, id)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) getByName(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetProductByName")
	defer span.End()

	p, err := h.service.GetProductByName(ctx, chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateProduct")
	defer span.End()

	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	var patch domain.ProductPatch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		h.fail(w, r, span, err)
		return
	}
	p, err := h.service.UpdateProduct(ctx, id, patch)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteProduct")
	defer span.End()

	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	if err := h.service.DeleteProduct(ctx, id); err != nil {
		h.fail(w, r, span, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, apperr.KindOf(err).String())
	httpx.WriteError(w, r, h.log, err)
}
