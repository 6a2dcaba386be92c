package store

import (
	"database/sql"
	"fmt"
	"time"
)

// AuditEntry is one recorded command invocation.
type AuditEntry struct {
	ID        int64
	Timestamp time.Time
	TraceID   string
	ActorMXID string
	Action    string
	RoomID    sql.NullString
	Outcome   string
	Detail    sql.NullString
}

// WriteAudit records a command invocation.
func (s *Store) WriteAudit(traceID, actorMXID, action, roomID, outcome, detail string) error {
	var roomNull, detailNull sql.NullString
	if roomID != "" {
		roomNull = sql.NullString{String: roomID, Valid: true}
	}
	if detail != "" {
		detailNull = sql.NullString{String: detail, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO audit_log (ts, trace_id, actor_mxid, action, room_id, outcome, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, time.Now(), traceID, actorMXID, action, roomNull, outcome, detailNull)
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// RecentAudit returns the newest audit entries, most recent first.
func (s *Store) RecentAudit(limit int) ([]*AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, ts, trace_id, actor_mxid, action, room_id, outcome, detail
		FROM audit_log
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []*AuditEntry
	for rows.Next() {
		entry := &AuditEntry{}
		if err := rows.Scan(
			&entry.ID, &entry.Timestamp, &entry.TraceID, &entry.ActorMXID,
			&entry.Action, &entry.RoomID, &entry.Outcome, &entry.Detail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log: %w", err)
	}
	return entries, nil
}
