package db

import (
	"database/sql"
	"fmt"
	"time"

	"osrs-flipper/internal/logger"
	"osrs-flipper/internal/wiki"
)

// GetTimeseries returns cached points for an item, oldest first.
// Returns nil, false if not cached or if the cache is older than maxAge.
func (d *DB) GetTimeseries(itemID int, timestep string, maxAge time.Duration) ([]wiki.TimeseriesPoint, bool) {
	var updatedAt string
	err := d.sql.QueryRow(
		"SELECT updated_at FROM timeseries_meta WHERE item_id=? AND timestep=?",
		itemID, timestep,
	).Scan(&updatedAt)
	if err != nil {
		return nil, false
	}

	t, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil || time.Since(t) > maxAge {
		return nil, false
	}

	rows, err := d.sql.Query(
		`SELECT timestamp, avg_high_price, avg_low_price, high_volume, low_volume
		 FROM timeseries WHERE item_id=? AND timestep=? ORDER BY timestamp`,
		itemID, timestep,
	)
	if err != nil {
		return nil, false
	}
	defer rows.Close()

	var points []wiki.TimeseriesPoint
	for rows.Next() {
		var p wiki.TimeseriesPoint
		var high, low sql.NullInt64
		if err := rows.Scan(&p.Timestamp, &high, &low, &p.HighPriceVolume, &p.LowPriceVolume); err != nil {
			continue
		}
		if high.Valid {
			p.AvgHighPrice = wiki.Int64(high.Int64)
		}
		if low.Valid {
			p.AvgLowPrice = wiki.Int64(low.Int64)
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, false
	}
	return points, true
}

// SetTimeseries replaces the cached points for an item.
func (d *DB) SetTimeseries(itemID int, timestep string, points []wiki.TimeseriesPoint) {
	tx, err := d.sql.Begin()
	if err != nil {
		logger.Warn("DB", fmt.Sprintf("SetTimeseries begin: %v", err))
		return
	}
	defer tx.Rollback()

	tx.Exec("DELETE FROM timeseries WHERE item_id=? AND timestep=?", itemID, timestep)

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO timeseries
		(item_id, timestep, timestamp, avg_high_price, avg_low_price, high_volume, low_volume)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		logger.Warn("DB", fmt.Sprintf("SetTimeseries prepare: %v", err))
		return
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(itemID, timestep, p.Timestamp, nullable(p.AvgHighPrice), nullable(p.AvgLowPrice), p.HighPriceVolume, p.LowPriceVolume); err != nil {
			logger.Warn("DB", fmt.Sprintf("SetTimeseries insert item %d: %v", itemID, err))
			return
		}
	}

	tx.Exec(
		"INSERT OR REPLACE INTO timeseries_meta (item_id, timestep, updated_at) VALUES (?,?,?)",
		itemID, timestep, time.Now().UTC().Format(time.RFC3339),
	)

	if err := tx.Commit(); err != nil {
		logger.Warn("DB", fmt.Sprintf("SetTimeseries commit: %v", err))
	}
}

// CleanupTimeseries removes cached series not refreshed within maxAge.
func (d *DB) CleanupTimeseries(maxAge time.Duration) int64 {
	cutoff := time.Now().UTC().Add(-maxAge).Format(time.RFC3339)
	res, err := d.sql.Exec(`
		DELETE FROM timeseries
		WHERE (item_id, timestep) IN (
			SELECT item_id, timestep FROM timeseries_meta WHERE updated_at < ?
		)`, cutoff)
	if err != nil {
		logger.Warn("DB", fmt.Sprintf("CleanupTimeseries: %v", err))
		return 0
	}
	n, _ := res.RowsAffected()
	d.sql.Exec("DELETE FROM timeseries_meta WHERE updated_at < ?", cutoff)
	return n
}

func nullable(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
