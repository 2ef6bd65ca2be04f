package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iliyamo/secure-ping/internal/model"
)

// probeHistorySchema is accepted by both MySQL and SQLite.  Times are kept
// as unix milliseconds so neither driver has to parse DATETIME values.
const probeHistorySchema = `CREATE TABLE IF NOT EXISTS probe_history (
	id            VARCHAR(36)  NOT NULL PRIMARY KEY,
	host          VARCHAR(255) NOT NULL,
	args          TEXT         NOT NULL,
	succeeded     TINYINT(1)   NOT NULL,
	exit_code     INT          NOT NULL,
	stdout        TEXT         NOT NULL,
	stderr        TEXT         NOT NULL,
	started_at_ms BIGINT       NOT NULL,
	duration_ms   BIGINT       NOT NULL
)`

// ProbeRepo persists probe records in the probe_history table.
type ProbeRepo struct{ DB *sql.DB }

func NewProbeRepo(db *sql.DB) *ProbeRepo { return &ProbeRepo{DB: db} }

// Migrate creates the probe_history table if it does not exist.
func (r *ProbeRepo) Migrate(ctx context.Context) error {
	if r.DB == nil {
		return ErrNotConfigured
	}
	_, err := r.DB.ExecContext(ctx, probeHistorySchema)
	return err
}

// Insert stores one probe record.
func (r *ProbeRepo) Insert(ctx context.Context, rec model.ProbeRecord) error {
	if r.DB == nil {
		return ErrNotConfigured
	}
	args, err := json.Marshal(rec.Args)
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO probe_history (id, host, args, succeeded, exit_code, stdout, stderr, started_at_ms, duration_ms)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Host, string(args), rec.Succeeded, rec.ExitCode, rec.Stdout, rec.Stderr,
		rec.StartedAt.UTC().UnixMilli(), rec.Duration.Milliseconds())
	return err
}

// ListRecent returns up to limit records, newest first.
func (r *ProbeRepo) ListRecent(ctx context.Context, limit int) ([]model.ProbeRecord, error) {
	if r.DB == nil {
		return nil, ErrNotConfigured
	}
	if limit < 1 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, host, args, succeeded, exit_code, stdout, stderr, started_at_ms, duration_ms
		 FROM probe_history ORDER BY started_at_ms DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProbeRecord
	for rows.Next() {
		var (
			rec        model.ProbeRecord
			args       string
			startedMS  int64
			durationMS int64
		)
		if err := rows.Scan(&rec.ID, &rec.Host, &args, &rec.Succeeded, &rec.ExitCode,
			&rec.Stdout, &rec.Stderr, &startedMS, &durationMS); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(args), &rec.Args); err != nil {
			return nil, fmt.Errorf("decode args of %s: %w", rec.ID, err)
		}
		rec.StartedAt = time.UnixMilli(startedMS).UTC()
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}
