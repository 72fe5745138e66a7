package database

import (
	"context"
	"fmt"
	"time"

	"media-converter/internal/logging"
	"media-converter/internal/metrics"
)

// DefaultHistoryLimit is the page size used when a caller asks for none.
const DefaultHistoryLimit = 50

// MaxHistoryLimit caps how many records one query may return.
const MaxHistoryLimit = 500

// RecordConversion stores c. CreatedAt defaults to now.
func (d *Database) RecordConversion(ctx context.Context, c *Conversion) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	start := time.Now()
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO conversions (
			request_id, source_name, source_category, target_format, variant,
			fell_back, status, error, input_bytes, output_bytes, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.RequestID, c.SourceName, c.SourceCategory, c.TargetFormat, c.Variant,
		c.FellBack, c.Status, c.Error, c.InputBytes, c.OutputBytes, c.DurationMs, c.CreatedAt.Unix(),
	)
	recordQuery("record_conversion", start, err)
	if err != nil {
		return fmt.Errorf("failed to record conversion: %w", err)
	}

	if id, idErr := res.LastInsertId(); idErr == nil {
		c.ID = id
	}
	return nil
}

// RecentConversions returns up to limit records, newest first. A limit of
// zero or less uses DefaultHistoryLimit; larger values are capped at
// MaxHistoryLimit.
func (d *Database) RecentConversions(ctx context.Context, limit int) ([]Conversion, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	start := time.Now()
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, request_id, source_name, source_category, target_format, variant,
			fell_back, status, error, input_bytes, output_bytes, duration_ms, created_at
		FROM conversions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		recordQuery("recent_conversions", start, err)
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Warn("error closing rows: %v", err)
		}
	}()

	conversions := make([]Conversion, 0, limit)
	for rows.Next() {
		var c Conversion
		var createdAt int64
		if err := rows.Scan(
			&c.ID, &c.RequestID, &c.SourceName, &c.SourceCategory, &c.TargetFormat, &c.Variant,
			&c.FellBack, &c.Status, &c.Error, &c.InputBytes, &c.OutputBytes, &c.DurationMs, &createdAt,
		); err != nil {
			recordQuery("recent_conversions", start, err)
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		c.CreatedAt = time.Unix(createdAt, 0)
		conversions = append(conversions, c)
	}

	err = rows.Err()
	recordQuery("recent_conversions", start, err)
	if err != nil {
		return nil, err
	}
	return conversions, nil
}

// Stats counts the recorded conversions by outcome.
func (d *Database) Stats(ctx context.Context) (HistoryStats, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	var s HistoryStats
	err := d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(fell_back), 0)
		FROM conversions
	`, StatusSuccess, StatusFailed).Scan(&s.Total, &s.Succeeded, &s.Failed, &s.Fallbacks)
	recordQuery("stats", start, err)
	if err != nil {
		return HistoryStats{}, fmt.Errorf("failed to count conversions: %w", err)
	}
	return s, nil
}

// GetStats implements metrics.StatsProvider. Errors are logged and reported
// as zero counts.
func (d *Database) GetStats() metrics.Stats {
	s, err := d.Stats(context.Background())
	if err != nil {
		logging.Warn("Failed to collect history stats: %v", err)
		return metrics.Stats{}
	}
	return metrics.Stats{
		TotalConversions: s.Total,
		Succeeded:        s.Succeeded,
		Failed:           s.Failed,
		Fallbacks:        s.Fallbacks,
	}
}

// PruneOlderThan deletes records created before cutoff and returns how many
// were removed.
func (d *Database) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	res, err := d.db.ExecContext(ctx, "DELETE FROM conversions WHERE created_at < ?", cutoff.Unix())
	recordQuery("prune", start, err)
	if err != nil {
		return 0, fmt.Errorf("failed to prune conversions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logging.Info("Pruned %d conversion records older than %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}
