package recorder

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"MarketLens/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists loaded series to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
// Missing parent directories are created.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets readers (dashboards, the HTTP API) run while a watch job writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS series_runs (
			id          TEXT PRIMARY KEY,
			symbol      TEXT NOT NULL,
			kind        TEXT NOT NULL,
			interval    TEXT,
			output_size TEXT,
			fetched_at  INTEGER NOT NULL,
			row_count   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_series ON series_runs(symbol, kind, fetched_at)`,

		`CREATE TABLE IF NOT EXISTS series_points (
			run_id  TEXT NOT NULL REFERENCES series_runs(id),
			ts      INTEGER NOT NULL,
			name    TEXT NOT NULL,
			value   REAL NOT NULL,
			PRIMARY KEY (run_id, ts, name)
		)`,

		`CREATE TABLE IF NOT EXISTS indicator_snapshots (
			run_id      TEXT PRIMARY KEY REFERENCES series_runs(id),
			as_of       INTEGER NOT NULL,
			close       REAL,
			ma          REAL,
			macd        REAL,
			macd_signal REAL,
			macd_hist   REAL,
			rsi         REAL,
			bb_lower    REAL,
			bb_middle   REAL,
			bb_upper    REAL,
			bb_percent  REAL,
			range_high  REAL,
			range_low   REAL,
			position    REAL
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordSeries writes the run header and all non-NaN cells in one transaction.
func (r *SQLiteRecorder) RecordSeries(snap *SeriesSnapshot) (string, error) {
	if snap == nil || snap.Table.Empty() {
		return "", fmt.Errorf("record series: empty table")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	t := snap.Table
	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	symbol := t.Symbol
	if symbol == "" {
		symbol = snap.Request.Symbol
	}
	runID := uuid.NewString()

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO series_runs
		(id, symbol, kind, interval, output_size, fetched_at, row_count)
		VALUES (?,?,?,?,?,?,?)`,
		runID, symbol, string(snap.Request.Kind), snap.Request.Interval, snap.Request.OutputSize,
		fetchedAt.Unix(), t.Len(),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO series_points (run_id, ts, name, value) VALUES (?,?,?,?)`)
	if err != nil {
		return "", fmt.Errorf("prepare points: %w", err)
	}
	defer stmt.Close()

	for _, col := range t.Columns() {
		values, _ := t.Column(col)
		for i, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if _, err := stmt.Exec(runID, t.Index[i].Unix(), col, v); err != nil {
				return "", fmt.Errorf("insert point %s@%d: %w", col, t.Index[i].Unix(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

func (r *SQLiteRecorder) RecordIndicators(runID string, snap *model.IndicatorSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT OR REPLACE INTO indicator_snapshots
		(run_id, as_of, close, ma, macd, macd_signal, macd_hist, rsi,
		 bb_lower, bb_middle, bb_upper, bb_percent, range_high, range_low, position)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		runID, snap.AsOf.Unix(),
		nullable(snap.Close), nullable(snap.MA),
		nullable(snap.MACD), nullable(snap.MACDSignal), nullable(snap.MACDHist),
		nullable(snap.RSI),
		nullable(snap.BBLower), nullable(snap.BBMiddle), nullable(snap.BBUpper), nullable(snap.BBPercent),
		nullable(snap.High), nullable(snap.Low), nullable(snap.Position),
	)
	return err
}

// LatestRun returns the most recently fetched run for symbol and kind.
func (r *SQLiteRecorder) LatestRun(symbol string, kind model.SeriesKind) (*RunSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		s         RunSummary
		k         string
		fetchedAt int64
	)
	err := r.db.QueryRow(`SELECT id, symbol, kind, interval, output_size, fetched_at, row_count
		FROM series_runs WHERE symbol = ? AND kind = ?
		ORDER BY fetched_at DESC, rowid DESC LIMIT 1`, symbol, string(kind),
	).Scan(&s.ID, &s.Symbol, &k, &s.Interval, &s.OutputSize, &fetchedAt, &s.Rows)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", kind, symbol, ErrNoRun)
	}
	if err != nil {
		return nil, err
	}
	s.Kind = model.SeriesKind(k)
	s.FetchedAt = time.Unix(fetchedAt, 0)
	return &s, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
