package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// ErrNotFound is returned when a record ID does not exist. Callers must
// never retry on it.
var ErrNotFound = errors.New("record not found")

// ErrValidation is returned when caller-supplied input fails a
// precondition before any query runs.
var ErrValidation = errors.New("validation failed")

type DB struct {
	connection *sql.DB
	logger     *zap.SugaredLogger
}

func NewDB(dataSourceName string, logger *zap.SugaredLogger) (*DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &DB{connection: db, logger: logger}, nil
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		db.logger.Errorw("closing database connection", "error", err)
	}
}

// EnsureSchema creates the candidate_records table if it does not exist.
// One row per record; the nested document parts live in jsonb columns
// and status_history is an append-only jsonb array.
func (db *DB) EnsureSchema(ctx context.Context) error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS candidate_records (
            id             UUID PRIMARY KEY,
            known_data     JSONB NOT NULL DEFAULT '{}'::jsonb,
            file_metadata  JSONB,
            processing     JSONB,
            extracted_text TEXT NOT NULL DEFAULT '',
            current_status TEXT NOT NULL,
            status_history JSONB NOT NULL DEFAULT '[]'::jsonb,
            is_deleted     BOOLEAN NOT NULL DEFAULT FALSE
        );
        CREATE INDEX IF NOT EXISTS idx_candidate_records_status
            ON candidate_records (current_status) WHERE NOT is_deleted;
    `
	_, err := db.connection.ExecContext(ctx, ddl)
	return err
}

// NowTimestamp formats the current time the way record timestamps are
// stored: UTC ISO-8601 with an explicit Z suffix.
func NowTimestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
}
