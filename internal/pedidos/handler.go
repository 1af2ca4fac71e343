package pedidos

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pedidoflow/pedidoflow/internal/brdoc"
	"github.com/pedidoflow/pedidoflow/internal/platform/httpx"
	"github.com/pedidoflow/pedidoflow/internal/shared"
	"github.com/pedidoflow/pedidoflow/internal/users"
)

// Handler exposes the order lifecycle over HTTP.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Submit handles POST /api/pedidos.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req SubmitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	pedido, err := h.service.Submit(r.Context(), req, actor, r.Header.Get("Idempotency-Key"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(pedido))
}

// Get handles GET /api/pedidos/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be numeric")
		return
	}

	pedido, err := h.service.Get(r.Context(), id, actor)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(pedido))
}

// List handles GET /api/pedidos. Admin only, enforced by routing.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	pedidos, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponseList(pedidos))
}

// ListByVendedor handles GET /api/pedidos/vendedor/{id}. Vendors may
// only read their own list; admins may read any.
func (h *Handler) ListByVendedor(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	vendedorID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be numeric")
		return
	}
	if actor.Role != users.RoleAdmin && actor.ID != vendedorID {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}

	pedidos, err := h.service.ListByVendedor(r.Context(), vendedorID, filterFromQuery(r))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponseList(pedidos))
}

// AdvanceStatus handles POST /api/pedidos/{id}/status. Admin only.
func (h *Handler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be numeric")
		return
	}

	var req AdvanceStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	pedido, err := h.service.AdvanceStatus(r.Context(), id, req.Status, actor)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(pedido))
}

// Resumo handles GET /api/pedidos/resumo. Admin only.
func (h *Handler) Resumo(w http.ResponseWriter, r *http.Request) {
	resumo, err := h.service.GetResumo(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resumo)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("pedidos request failed",
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	httpx.RespondError(w, err)
}

func actorFromRequest(r *http.Request) (Actor, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return Actor{}, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return Actor{}, false
	}
	return Actor{ID: id, Role: sess.Role()}, true
}

func filterFromQuery(r *http.Request) ListFilter {
	q := r.URL.Query()
	filter := ListFilter{
		Status:   q.Get("status"),
		DateFrom: q.Get("from"),
		DateTo:   q.Get("to"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = offset
	}
	return filter
}

func toResponse(pedido *Pedido) PedidoResponse {
	return PedidoResponse{
		Pedido:         *pedido,
		TotalFormatado: brdoc.FormatBRL(pedido.Total),
	}
}

func toResponseList(pedidos []Pedido) []PedidoResponse {
	out := make([]PedidoResponse, 0, len(pedidos))
	for i := range pedidos {
		out = append(out, toResponse(&pedidos[i]))
	}
	return out
}
