package pedidos

import (
	"github.com/go-chi/chi/v5"

	"github.com/pedidoflow/pedidoflow/internal/rbac"
	"github.com/pedidoflow/pedidoflow/internal/users"
)

// RegisterRoutes mounts the order endpoints under /api/pedidos.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/pedidos", func(r chi.Router) {
		r.Use(rbac.RequireAuthenticated)

		r.Group(func(r chi.Router) {
			r.Use(rbac.RequireRole(users.RoleAdmin))
			r.Get("/", h.List)
			r.Get("/resumo", h.Resumo)
			r.Post("/{id}/status", h.AdvanceStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(rbac.RequireRole(users.RoleVendor, users.RoleAdmin))
			r.Post("/", h.Submit)
			r.Get("/vendedor/{id}", h.ListByVendedor)
			r.Get("/{id}", h.Get)
		})
	})
}
