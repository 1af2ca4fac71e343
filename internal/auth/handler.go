package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pedidoflow/pedidoflow/internal/observability"
	"github.com/pedidoflow/pedidoflow/internal/platform/httpx"
	"github.com/pedidoflow/pedidoflow/internal/shared"
	"github.com/pedidoflow/pedidoflow/internal/users"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Nome  string `json:"nome"`
	Role  string `json:"role"`
}

// Handler exposes login, logout and the current-session endpoint.
type Handler struct {
	service  *Service
	sessions *shared.SessionManager
	repo     users.Repository
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewHandler constructs a Handler. Metrics may be nil.
func NewHandler(service *Service, sessions *shared.SessionManager, repo users.Repository, metrics *observability.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		repo:     repo,
		metrics:  metrics,
		logger:   logger,
	}
}

// RegisterRoutes mounts the auth endpoints.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}

	user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			if h.metrics != nil {
				h.metrics.LoginFailures.Inc()
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "email ou senha incorretos")
			return
		}
		h.logger.Error("login failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10), user.Role)

	httpx.JSON(w, http.StatusOK, meResponse{
		ID:    user.ID,
		Email: user.Email,
		Nome:  user.Nome,
		Role:  user.Role,
	})
}

// Logout handles POST /auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	h.sessions.Destroy(sess)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me handles GET /auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	user, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		h.logger.Error("me lookup failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, meResponse{
		ID:    user.ID,
		Email: user.Email,
		Nome:  user.Nome,
		Role:  user.Role,
	})
}
