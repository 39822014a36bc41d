package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dwikikusuma/cosmo-market/internal/order/domain"
	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/dwikikusuma/cosmo-market/pkg/httpx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type OrderService interface {
	Create(ctx context.Context) (domain.OrderView, error)
	List(ctx context.Context) ([]domain.OrderView, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.OrderView, error)
	GetByCreatedAt(ctx context.Context, createdAt time.Time) (domain.OrderView, error)
	AddItem(ctx context.Context, orderID, productID uuid.UUID, quantity int32) (domain.OrderView, error)
	UpdateItemQuantity(ctx context.Context, orderID, itemID uuid.UUID, quantity int32) (domain.OrderView, error)
	RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (domain.OrderView, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	log     *slog.Logger
	service OrderService
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service OrderService) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

type addItemReq struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int32     `json:"quantity"`
}

type updateItemReq struct {
	Quantity int32 `json:"quantity"`
}

// Routes is mounted under /api/v1/orders.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/by-created-at/{ts}", h.getByCreatedAt)
	r.Get("/{orderId}", h.get)
	r.Delete("/{orderId}", h.delete)
	r.Post("/{orderId}/items", h.addItem)
	r.Put("/{orderId}/items/{itemId}", h.updateItem)
	r.Delete("/{orderId}/items/{itemId}", h.removeItem)
	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	order, err := h.service.Create(ctx)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	span.SetAttributes(attribute.String("order.id", order.ID.String()))
	httpx.WriteJSON(w, http.StatusCreated, order)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListOrders")
	defer span.End()

	orders, err := h.service.List(ctx)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, orders)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	id, err := httpx.URLParamUUID(r, "orderId")
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	order, err := h.service.GetByID(ctx, id)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) getByCreatedAt(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrderByCreatedAt")
	defer span.End()

	raw := chi.URLParam(r, "ts")
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		h.fail(w, r, span, apperr.Validation("invalid timestamp %q", raw))
		return
	}
	order, err := h.service.GetByCreatedAt(ctx, ts)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteOrder")
	defer span.End()

	id, err := httpx.URLParamUUID(r, "orderId")
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
	ctx, span := h.tracer.Start(r.Context(), "AddOrderItem")
	defer span.End()

	orderID, err := httpx.URLParamUUID(r, "orderId")
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
		attribute.String("order.id", orderID.String()),
		attribute.String("product.id", req.ProductID.String()),
	)
	order, err := h.service.AddItem(ctx, orderID, req.ProductID, req.Quantity)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderItem")
	defer span.End()

	orderID, itemID, err := itemParams(r)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	var req updateItemReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, span, err)
		return
	}
	order, err := h.service.UpdateItemQuantity(ctx, orderID, itemID, req.Quantity)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RemoveOrderItem")
	defer span.End()

	orderID, itemID, err := itemParams(r)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	order, err := h.service.RemoveItem(ctx, orderID, itemID)
	if err != nil {
		h.fail(w, r, span, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, order)
}

func itemParams(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	orderID, err := httpx.URLParamUUID(r, "orderId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	itemID, err := httpx.URLParamUUID(r, "itemId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return orderID, itemID, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, apperr.KindOf(err).String())
	httpx.WriteError(w, r, h.log, err)
}
