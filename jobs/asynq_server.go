package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hibiken/asynq"

	"github.com/pedidoflow/pedidoflow/internal/platform/httpx"
)

// Worker consumes queued tasks and delivers e-mails.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// NewWorker constructs a Worker bound to the given redis instance.
func NewWorker(redisAddr string, mailer *Mailer, logger *slog.Logger) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: 5,
			Queues:      map[string]int{"default": 1},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypePedidoStatusEmail, handleStatusEmail(mailer, logger))
	mux.HandleFunc(TypeUserResetEmail, handleResetEmail(mailer, logger))

	return &Worker{server: server, mux: mux, logger: logger}
}

// Run blocks processing tasks until Shutdown is called.
func (w *Worker) Run() error {
	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("jobs: worker run: %w", err)
	}
	return nil
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func handleStatusEmail(mailer *Mailer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload PedidoStatusPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("jobs: unmarshal %s: %v: %w", task.Type(), err, asynq.SkipRetry)
		}

		subject, body := statusEmailBody(payload)
		if err := mailer.Send(payload.To, subject, body); err != nil {
			return err
		}

		logger.Info("status email sent",
			slog.Int64("pedido_id", payload.PedidoID),
			slog.String("status", payload.Status),
		)
		return nil
	}
}

func handleResetEmail(mailer *Mailer, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload UserResetPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("jobs: unmarshal %s: %v: %w", task.Type(), err, asynq.SkipRetry)
		}

		subject, body := resetEmailBody(payload)
		if err := mailer.Send(payload.To, subject, body); err != nil {
			return err
		}

		logger.Info("reset email sent", slog.Int64("user_id", payload.UserID))
		return nil
	}
}

// HealthHandler reports queue depth via the asynq inspector.
func HealthHandler(redisAddr string) http.HandlerFunc {
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: redisAddr})

	return func(w http.ResponseWriter, r *http.Request) {
		info, err := inspector.GetQueueInfo("default")
		if err != nil {
			httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", err.Error())
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"queue":     info.Queue,
			"pending":   info.Pending,
			"active":    info.Active,
			"retry":     info.Retry,
			"archived":  info.Archived,
			"processed": info.Processed,
			"failed":    info.Failed,
		})
	}
}
