package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists load history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.Named("recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS load_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			source      TEXT,
			duration_ms INTEGER,
			rows        INTEGER,
			warnings    INTEGER,
			error_kind  TEXT,
			error       TEXT,
			mae         REAL,
			rmse        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_load_ts ON load_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordLoad(evt *LoadEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	res, err := r.db.Exec(`INSERT INTO load_events
		(timestamp, source, duration_ms, rows, warnings, error_kind, error, mae, rmse)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		ts.UnixMilli(), evt.Source, evt.Duration.Milliseconds(),
		evt.Rows, evt.Warnings, evt.ErrorKind, evt.Error,
		nullFloat(evt.MAE), nullFloat(evt.RMSE),
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		evt.ID = id
	}
	return nil
}

// RecentLoads returns up to limit events, newest first.
func (r *SQLiteRecorder) RecentLoads(limit int) ([]LoadEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`SELECT id, timestamp, source, duration_ms, rows, warnings, error_kind, error, mae, rmse
		FROM load_events ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query load events: %w", err)
	}
	defer rows.Close()

	events := []LoadEvent{}
	for rows.Next() {
		var (
			evt       LoadEvent
			ts, durMs int64
			kind, msg sql.NullString
			mae, rmse sql.NullFloat64
		)
		if err := rows.Scan(&evt.ID, &ts, &evt.Source, &durMs, &evt.Rows, &evt.Warnings, &kind, &msg, &mae, &rmse); err != nil {
			return nil, fmt.Errorf("scan load event: %w", err)
		}
		evt.Timestamp = time.UnixMilli(ts)
		evt.Duration = time.Duration(durMs) * time.Millisecond
		evt.ErrorKind = kind.String
		evt.Error = msg.String
		if mae.Valid {
			evt.MAE = &mae.Float64
		}
		if rmse.Valid {
			evt.RMSE = &rmse.Float64
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
