package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agentlance/agentlance/pkg/models"
)

// Archiver persists mesh events to the database. It implements the
// mesh Subscriber contract, so registering it on the global scope
// archives every event published. A failed insert reports an error and
// removes the archiver from the mesh; the run continues unarchived.
type Archiver struct {
	db *DB
}

// NewArchiver creates an archiver over an open, migrated database.
func NewArchiver(db *DB) *Archiver {
	return &Archiver{db: db}
}

// Send inserts one event.
func (a *Archiver) Send(event models.Event) error {
	var data []byte
	if event.Data != nil {
		var err error
		data, err = json.Marshal(event.Data)
		if err != nil {
			return fmt.Errorf("marshal event data: %w", err)
		}
	}

	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	_, err := a.db.conn.Exec(`
		INSERT OR IGNORE INTO events (id, type, job_id, agent_id, subtask_id, data, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, string(event.Type), event.JobID, event.AgentID, event.SubtaskID,
		string(data), event.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("archive event %s: %w", event.ID, err)
	}
	return nil
}

// ArchivedEvent is one persisted event. The payload is kept as raw
// JSON; archived rows are for inspection, not replay.
type ArchivedEvent struct {
	ID        string
	Type      models.EventType
	JobID     string
	AgentID   string
	SubtaskID string
	Data      json.RawMessage
	Timestamp time.Time
}

// EventsByJob returns the archived events for a job in publish order.
func (a *Archiver) EventsByJob(jobID string) ([]ArchivedEvent, error) {
	a.db.mu.RLock()
	defer a.db.mu.RUnlock()

	rows, err := a.db.conn.Query(`
		SELECT id, type, job_id, agent_id, subtask_id, data, timestamp
		FROM events WHERE job_id = ? ORDER BY timestamp, id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("query events for job %s: %w", jobID, err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// RecentEvents returns the most recent limit events across all jobs,
// oldest first. A non-positive limit returns all events.
func (a *Archiver) RecentEvents(limit int) ([]ArchivedEvent, error) {
	a.db.mu.RLock()
	defer a.db.mu.RUnlock()

	query := `
		SELECT id, type, job_id, agent_id, subtask_id, data, timestamp
		FROM (
			SELECT * FROM events ORDER BY timestamp DESC, id DESC LIMIT ?
		) ORDER BY timestamp, id`
	if limit <= 0 {
		limit = -1
	}
	rows, err := a.db.conn.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// CountEvents returns the total number of archived events.
func (a *Archiver) CountEvents() (int, error) {
	a.db.mu.RLock()
	defer a.db.mu.RUnlock()

	var n int
	row := a.db.conn.QueryRow("SELECT COUNT(*) FROM events")
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

func scanEvents(rows *sql.Rows) ([]ArchivedEvent, error) {
	var out []ArchivedEvent
	for rows.Next() {
		var (
			e    ArchivedEvent
			typ  string
			data string
			ts   string
		)
		if err := rows.Scan(&e.ID, &typ, &e.JobID, &e.AgentID, &e.SubtaskID, &data, &ts); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = models.EventType(typ)
		if data != "" {
			e.Data = json.RawMessage(data)
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse event timestamp: %w", err)
		}
		e.Timestamp = parsed
		out = append(out, e)
	}
	return out, rows.Err()
}
