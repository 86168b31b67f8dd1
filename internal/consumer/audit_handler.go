package consumer

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// AuditHandler appends consumed habit events to habit_event_log.
type AuditHandler struct {
	db  Execer
	now func() time.Time
}

// NewAuditHandler constructs a handler backed by the provided pool.
func NewAuditHandler(db Execer) *AuditHandler {
	return &AuditHandler{db: db, now: time.Now}
}

const insertEventLog = `INSERT INTO habit_event_log
    (event_type, habit_id, schema_id, schema_subject, topic, partition, record_offset, payload, received_at)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), $5, $6, $7, $8, $9)
ON CONFLICT (topic, partition, record_offset) DO NOTHING`

// Handle stores the event. Redelivered records hit the unique offset key and are ignored.
func (h *AuditHandler) Handle(ctx context.Context, msg Message) error {
	receivedAt := msg.Timestamp
	if receivedAt.IsZero() {
		receivedAt = h.now().UTC()
	}
	_, err := h.db.Exec(ctx, insertEventLog,
		msg.EventType,
		msg.HabitID,
		msg.SchemaID,
		msg.SchemaSubject,
		msg.Topic,
		msg.Partition,
		msg.Offset,
		[]byte(msg.Payload),
		receivedAt,
	)
	return err
}
