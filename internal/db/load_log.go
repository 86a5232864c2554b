package db

import (
	"fmt"
	"time"

	"osrs-flipper/internal/logger"
)

// LoadRecord is one market data load attempt.
type LoadRecord struct {
	ID         int64  `json:"id"`
	Timestamp  string `json:"timestamp"`
	ItemCount  int    `json:"item_count"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// RecordLoad stores the outcome of a load. It satisfies engine.LoadRecorder.
func (d *DB) RecordLoad(count int, duration time.Duration, loadErr error) {
	msg := ""
	if loadErr != nil {
		msg = loadErr.Error()
	}
	_, err := d.sql.Exec(
		"INSERT INTO load_log (timestamp, item_count, duration_ms, error) VALUES (?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), count, duration.Milliseconds(), msg,
	)
	if err != nil {
		logger.Warn("DB", fmt.Sprintf("RecordLoad: %v", err))
	}
}

// RecentLoads returns the last N load records (newest first).
func (d *DB) RecentLoads(limit int) []LoadRecord {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.sql.Query(
		"SELECT id, timestamp, item_count, duration_ms, error FROM load_log ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return []LoadRecord{}
	}
	defer rows.Close()

	out := []LoadRecord{}
	for rows.Next() {
		var r LoadRecord
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.ItemCount, &r.DurationMs, &r.Error); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out
}
