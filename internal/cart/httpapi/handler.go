package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dwikikusuma/cosmo-market/internal/cart/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/dwikikusuma/cosmo-market/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type CartService interface {
	Create(ctx context.Context) (domain.CartView, error)
	List(ctx context.Context) ([]domain.CartView, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.CartView, error)
	GetByCreatedAt(ctx context.Context, createdAt time.Time) (domain.CartView, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int32) (domain.CartView, error)
	UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int32) (domain.CartView, error)
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (domain.CartView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	log     *slog.Logger
	service CartService
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service CartService) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("cart-http"),
	}
}

type addItemReq struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int32     `json:"quantity"`
}

type updateItemReq struct {
	Quantity int32 `json:"quantity"`
}

// Routes is mounted under /api/v1/carts.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/by-created-at/{ts}", h.getByCreatedAt)
	r.Get("/{cartId}", h.get)
	r.Delete("/{cartId}", h.delete)
	r.Post("/{cartId}/items", h.addItem)
	r.Put("/{cartId}/items/{itemId}", h.updateItem)
	r.Delete("/{cartId}/items/{itemId}", h.removeItem)
	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateCart")
	defer span.End()

	cart, err := h.service.Create(ctx)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	span.SetAttributes(attribute.String("cart.id", cart.ID.String()))
	httpx.WriteJSON(w, http.StatusCreated, cart)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListCarts")
	defer span.End()

	carts, err := h.service.List(ctx)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, carts)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetCart")
	defer span.End()

	id, err := httpx.URLParamUUID(r, "cartId")
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	cart, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cart)
}

func (h *Handler) getByCreatedAt(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetCartByCreatedAt")
	defer span.End()

	raw := chi.URLParam(r, "ts")
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		h.fail(w, r, span, apperr.Validation("invalid timestamp %q", raw))
		return
	}
	cart, err := h.service.GetByCreatedAt(ctx, ts)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cart)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteCart")
	defer span.End()

	id, err := httpx.URLParamUUID(r, "cartId")
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	if err := h.service.Delete(ctx, id); err != nil {
		h.fail(w, r, span, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AddCartItem")
	defer span.End()

	cartID, err := httpx.URLParamUUID(r, "cartId")
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	var req addItemReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, span, err)
		return
	}
	if req.ProductID == uuid.Nil {
		h.fail(w, r, span, apperr.Validation("productId is required"))
		return
	}

	span.SetAttributes(
		attribute.String("cart.id", cartID.String()),
		attribute.String("product.id", req.ProductID.String()),
	)
	cart, err := h.service.AddItem(ctx, cartID, req.ProductID, req.Quantity)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cart)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateCartItem")
	defer span.End()

	cartID, itemID, err := itemParams(r)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	var req updateItemReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, span, err)
		return
	}
	cart, err := h.service.UpdateItemQuantity(ctx, cartID, itemID, req.Quantity)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cart)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RemoveCartItem")
	defer span.End()

	cartID, itemID, err := itemParams(r)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	cart, err := h.service.RemoveItem(ctx, cartID, itemID)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, cart)
}

func itemParams(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	cartID, err := httpx.URLParamUUID(r, "cartId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	itemID, err := httpx.URLParamUUID(r, "itemId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return cartID, itemID, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, apperr.KindOf(err).String())
	httpx.WriteError(w, r, h.log, err)
}
