package shared

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLogger records domain events to the audit_logs table.
type AuditLogger struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// AuditEntry describes a single audited action.
type AuditEntry struct {
	ActorID  string
	Action   string
	Entity   string
	EntityID string
	Metadata map[string]any
}

// NewAuditLogger constructs an AuditLogger.
func NewAuditLogger(pool *pgxpool.Pool, logger *slog.Logger) *AuditLogger {
	return &AuditLogger{pool: pool, logger: logger}
}

// Record persists the entry. Failures are logged but never propagated:
// auditing must not abort the business operation it describes.
func (a *AuditLogger) Record(ctx context.Context, entry AuditEntry) {
	meta, err := json.Marshal(entry.Metadata)
	if err != nil {
		meta = []byte("{}")
	}

	const query = `
		INSERT INTO audit_logs (actor_id, action, entity, entity_id, metadata)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := a.pool.Exec(ctx, query, nullIfEmpty(entry.ActorID), entry.Action, entry.Entity, entry.EntityID, meta); err != nil {
		a.logger.Error("audit record failed",
			slog.String("action", entry.Action),
			slog.String("entity", fmt.Sprintf("%s/%s", entry.Entity, entry.EntityID)),
			slog.Any("error", err),
		)
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
