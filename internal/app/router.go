package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pedidoflow/pedidoflow/internal/auth"
	"github.com/pedidoflow/pedidoflow/internal/observability"
	"github.com/pedidoflow/pedidoflow/internal/pedidos"
	"github.com/pedidoflow/pedidoflow/internal/platform/httpx"
	"github.com/pedidoflow/pedidoflow/internal/shared"
	"github.com/pedidoflow/pedidoflow/internal/users"
	"github.com/pedidoflow/pedidoflow/jobs"
)

// Dependencies aggregates what the router needs to assemble handlers.
type Dependencies struct {
	Config   *Config
	Logger   *slog.Logger
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Sessions *shared.SessionManager
	Metrics  *observability.Metrics
	Enqueuer *jobs.Enqueuer
}

// NewRouter wires middleware, handlers and routes into one chi mux.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()
	RegisterMiddleware(r, deps.Config, deps.Logger, deps.Sessions, deps.Metrics)

	audit := shared.NewAuditLogger(deps.Pool, deps.Logger)
	idempotency := shared.NewIdempotencyStore(deps.Pool)

	userRepo := users.NewPGRepository(deps.Pool)
	userService := users.NewService(userRepo, deps.Enqueuer, deps.Metrics, deps.Logger)
	userHandler := users.NewHandler(userService, deps.Logger)

	authService := auth.NewService(userRepo, deps.Logger)
	authHandler := auth.NewHandler(authService, deps.Sessions, userRepo, deps.Metrics, deps.Logger)

	pedidoRepo := pedidos.NewPGRepository(deps.Pool)
	pedidoCache := pedidos.NewResumoCache(deps.Redis)
	pedidoService := pedidos.NewService(
		pedidoRepo, pedidoCache, audit, deps.Enqueuer,
		idempotency, deps.Metrics, deps.Logger,
	)
	pedidoHandler := pedidos.NewHandler(pedidoService, deps.Logger)

	auth.RegisterRoutes(r, authHandler)
	pedidos.RegisterRoutes(r, pedidoHandler)
	users.RegisterRoutes(r, userHandler)

	r.Get("/healthz", healthHandler(deps.Pool, deps.Redis))
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	r.Get("/jobs/health", jobs.HealthHandler(deps.Config.RedisAddr))

	return r
}

func healthHandler(pool *pgxpool.Pool, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			httpx.Problem(w, http.StatusServiceUnavailable, "Database Unavailable", err.Error())
			return
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			httpx.Problem(w, http.StatusServiceUnavailable, "Redis Unavailable", err.Error())
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
