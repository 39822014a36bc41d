package feature

import (
	"log/slog"
	"net/http"

	"github.com/dwikikusuma/cosmo-market/pkg/apperr"
	"github.com/dwikikusuma/cosmo-market/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

// Handler exposes the flag registry under /api/v1/features.
type Handler struct {
	log  *slog.Logger
	gate *Gate
}

func NewHandler(log *slog.Logger, gate *Gate) *Handler {
	return &Handler{log: log, gate: gate}
}

type setFlagReq struct {
	Enabled *bool `json:"enabled"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Put("/{name}", h.set)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, h.gate.Flags())
}

func (h *Handler) set(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req setFlagReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if req.Enabled == nil {
		httpx.WriteError(w, r, h.log, apperr.Validation("enabled is required"))
		return
	}

	var known bool
	if *req.Enabled {
		known = h.gate.Enable(name)
	} else {
		known = h.gate.Disable(name)
	}
	if !known {
		httpx.WriteError(w, r, h.log, apperr.New(apperr.KindNotFound, "Feature toggle not found: '"+name+"'"))
		return
	}

	h.log.InfoContext(r.Context(), "feature toggled",
		slog.String("feature", name),
		slog.Bool("enabled", *req.Enabled),
	)
	httpx.WriteJSON(w, http.StatusOK, Flag{Name: name, Enabled: *req.Enabled})
}
