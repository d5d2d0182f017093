package postgres

import (
	"context"
	"database/sql"
	"fmt"

	audit "idproof/pkg/platform/audit"
	txcontext "idproof/pkg/platform/tx"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Schema is applied by Migrate. Audit rows hold no raw contact data.
const Schema = `
CREATE TABLE IF NOT EXISTS kyc_audit_events (
	id           UUID PRIMARY KEY,
	category     TEXT NOT NULL,
	occurred_at  TIMESTAMPTZ NOT NULL,
	session_id   TEXT NOT NULL,
	subject_hash TEXT NOT NULL DEFAULT '',
	action       TEXT NOT NULL,
	stage        TEXT NOT NULL DEFAULT '',
	decision     TEXT NOT NULL DEFAULT '',
	reason       TEXT NOT NULL DEFAULT '',
	request_id   TEXT NOT NULL DEFAULT '',
	caller_id    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS kyc_audit_events_session_idx ON kyc_audit_events (session_id, occurred_at);
`

// Store implements audit.Store on PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the audit table if needed.
func (s *Store) Migrate(ctx context.Context) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.execer(ctx).ExecContext(ctx, Schema); err != nil {
			return fmt.Errorf("migrate audit schema: %w", err)
		}
		return nil
	})
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}
	query := `
		INSERT INTO kyc_audit_events (
			id, category, occurred_at, session_id, subject_hash, action,
			stage, decision, reason, request_id, caller_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		event.SessionID,
		event.SubjectHash,
		event.Action,
		event.Stage,
		event.Decision,
		event.Reason,
		event.RequestID,
		event.CallerID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]audit.Event, error) {
	return s.query(ctx, `
		SELECT category, occurred_at, session_id, subject_hash, action, stage, decision, reason, request_id, caller_id
		FROM kyc_audit_events
		WHERE session_id = $1
		ORDER BY occurred_at ASC
	`, sessionID)
}

// ListByActions returns the most recent events with any of the given actions.
func (s *Store) ListByActions(ctx context.Context, actions []audit.AuditEvent, limit int) ([]audit.Event, error) {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = string(a)
	}
	return s.query(ctx, `
		SELECT category, occurred_at, session_id, subject_hash, action, stage, decision, reason, request_id, caller_id
		FROM kyc_audit_events
		WHERE action = ANY($1)
		ORDER BY occurred_at DESC
		LIMIT $2
	`, pq.Array(names), limit)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var category string
		if err := rows.Scan(&category, &e.Timestamp, &e.SessionID, &e.SubjectHash, &e.Action,
			&e.Stage, &e.Decision, &e.Reason, &e.RequestID, &e.CallerID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
