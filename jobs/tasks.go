// Package jobs defines the asynq task types and the worker that
// processes them.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/pedidoflow/pedidoflow/internal/pedidos"
	"github.com/pedidoflow/pedidoflow/internal/users"
)

// Task type names.
const (
	TypePedidoStatusEmail = "pedido:status_email"
	TypeUserResetEmail    = "user:reset_email"
)

// PedidoStatusPayload notifies about a submission or status change.
type PedidoStatusPayload struct {
	To       string  `json:"to"`
	PedidoID int64   `json:"pedido_id"`
	Cliente  string  `json:"cliente"`
	Status   string  `json:"status"`
	Total    float64 `json:"total"`
}

// UserResetPayload asks the worker to send a password-reset e-mail.
type UserResetPayload struct {
	To     string `json:"to"`
	Nome   string `json:"nome"`
	UserID int64  `json:"user_id"`
}

// Enqueuer pushes tasks onto the queue. It satisfies both
// pedidos.Notifier and users.ResetMailer.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer constructs an Enqueuer.
func NewEnqueuer(redisAddr string) *Enqueuer {
	return &Enqueuer{
		client: asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
	}
}

// Close releases the underlying client.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}

// PedidoStatusChanged enqueues a status acknowledgement e-mail. Orders
// without a customer e-mail are skipped.
func (e *Enqueuer) PedidoStatusChanged(ctx context.Context, pedido *pedidos.Pedido) error {
	if pedido.ClienteEmail == "" {
		return nil
	}

	payload, err := json.Marshal(PedidoStatusPayload{
		To:       pedido.ClienteEmail,
		PedidoID: pedido.ID,
		Cliente:  pedido.ClienteRazao,
		Status:   pedido.Status,
		Total:    pedido.Total,
	})
	if err != nil {
		return fmt.Errorf("jobs: marshal status payload: %w", err)
	}

	_, err = e.client.EnqueueContext(ctx,
		asynq.NewTask(TypePedidoStatusEmail, payload),
		asynq.MaxRetry(5),
		asynq.Queue("default"),
	)
	if err != nil {
		return fmt.Errorf("jobs: enqueue %s: %w", TypePedidoStatusEmail, err)
	}
	return nil
}

// PasswordResetRequested enqueues a password-reset e-mail.
func (e *Enqueuer) PasswordResetRequested(ctx context.Context, user *users.User) error {
	payload, err := json.Marshal(UserResetPayload{
		To:     user.Email,
		Nome:   user.Nome,
		UserID: user.ID,
	})
	if err != nil {
		return fmt.Errorf("jobs: marshal reset payload: %w", err)
	}

	_, err = e.client.EnqueueContext(ctx,
		asynq.NewTask(TypeUserResetEmail, payload),
		asynq.MaxRetry(3),
		asynq.Queue("default"),
	)
	if err != nil {
		return fmt.Errorf("jobs: enqueue %s: %w", TypeUserResetEmail, err)
	}
	return nil
}
