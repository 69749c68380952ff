// Package results saves the report of every run to sqlite so runs can be compared later.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"umami-loadtest/internal/loadtest"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and makes sure the schema exists.
func Open(ctx context.Context, path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	store, err := NewStore(ctx, database)
	if err != nil {
		database.Close()
		return Store{}, err
	}
	return store, nil
}

func NewStore(ctx context.Context, database *sql.DB) (Store, error) {
	_, err := database.ExecContext(ctx, Schema)
	if err != nil {
		return Store{}, fmt.Errorf("create schema: %w", err)
	}
	return Store{db: database}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

type Run struct {
	ID        int64
	StartedAt time.Time
	Elapsed   time.Duration
	Host      string
	Users     int
	Seed      int64
}

const (
	KindTask    = "task"
	KindRequest = "request"
)

type StatsRow struct {
	Kind     string
	Name     string
	Count    int
	Failures int
	Avg      time.Duration
	Min      time.Duration
	Max      time.Duration
	P50      time.Duration
	P95      time.Duration
	P99      time.Duration
}

type FailureRow struct {
	Name   string
	Reason string
	Count  int
}

func toMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func fromMs(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond)).Round(time.Microsecond)
}

func statsRow(kind string, s *loadtest.Stats) StatsRow {
	return StatsRow{
		Kind:     kind,
		Name:     s.Name,
		Count:    s.Count,
		Failures: s.Failures,
		Avg:      s.Avg(),
		Min:      s.Min(),
		Max:      s.Max(),
		P50:      s.P50(),
		P95:      s.P95(),
		P99:      s.P99(),
	}
}

// SaveReport stores a finished run, it returns the id of the run.
func (s Store) SaveReport(ctx context.Context, host string, seed int64, report loadtest.Report) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		"insert into run(started_at, elapsed_ms, host, users, seed) values (?, ?, ?, ?, ?)",
		report.Started.Unix(),
		report.Elapsed.Milliseconds(),
		host,
		report.Users,
		seed,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runId, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	var rows []StatsRow
	for _, stats := range report.Tasks {
		rows = append(rows, statsRow(KindTask, stats))
	}
	for _, stats := range report.Requests {
		rows = append(rows, statsRow(KindRequest, stats))
	}
	for _, row := range rows {
		_, err := tx.ExecContext(
			ctx,
			`insert into run_stats(run_id, kind, name, count, failures, avg_ms, min_ms, max_ms, p50_ms, p95_ms, p99_ms)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runId, row.Kind, row.Name, row.Count, row.Failures,
			toMs(row.Avg), toMs(row.Min), toMs(row.Max),
			toMs(row.P50), toMs(row.P95), toMs(row.P99),
		)
		if err != nil {
			return 0, fmt.Errorf("insert stats of %s: %w", row.Name, err)
		}
	}

	for _, failure := range report.Failures() {
		_, err := tx.ExecContext(
			ctx,
			"insert into run_failure(run_id, name, reason, count) values (?, ?, ?, ?)",
			runId, failure.Name, failure.Reason, failure.Count,
		)
		if err != nil {
			return 0, fmt.Errorf("insert failure of %s: %w", failure.Name, err)
		}
	}

	return runId, tx.Commit()
}

// Runs lists every saved run, newest first.
func (s Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select id, started_at, elapsed_ms, host, users, seed from run order by id desc",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		var startedAt, elapsedMs int64
		err := rows.Scan(&run.ID, &startedAt, &elapsedMs, &run.Host, &run.Users, &run.Seed)
		if err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(startedAt, 0)
		run.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		out = append(out, run)
	}
	return out, rows.Err()
}

// Stats returns the task and request rows of a run, tasks first, each sorted by name.
func (s Store) Stats(ctx context.Context, runId int64) ([]StatsRow, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select kind, name, count, failures, avg_ms, min_ms, max_ms, p50_ms, p95_ms, p99_ms
		from run_stats where run_id = ?
		order by case kind when 'task' then 0 else 1 end, name`,
		runId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatsRow
	for rows.Next() {
		var row StatsRow
		var avg, minMs, maxMs, p50, p95, p99 float64
		err := rows.Scan(&row.Kind, &row.Name, &row.Count, &row.Failures, &avg, &minMs, &maxMs, &p50, &p95, &p99)
		if err != nil {
			return nil, err
		}
		row.Avg, row.Min, row.Max = fromMs(avg), fromMs(minMs), fromMs(maxMs)
		row.P50, row.P95, row.P99 = fromMs(p50), fromMs(p95), fromMs(p99)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s Store) Failures(ctx context.Context, runId int64) ([]FailureRow, error) {
	rows, err := s.db.QueryContext(
		ctx,
		"select name, reason, count from run_failure where run_id = ? order by count desc, name, reason",
		runId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FailureRow
	for rows.Next() {
		var row FailureRow
		err := rows.Scan(&row.Name, &row.Reason, &row.Count)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
