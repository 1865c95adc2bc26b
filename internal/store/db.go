// Package store provides the sqlite-backed persistence shared by
// internal/assistant, internal/permission and internal/syncengine,
// grounded on the teacher's database/sql usage in
// pkg/connector/memory_vector.go (mutex-guarded connection handling,
// fmt.Errorf("...: %w", err) wrapping).
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB wraps a *sql.DB opened against the sqlite3 driver and runs the
// module's schema migrations on Open.
type DB struct {
	raw *sql.DB
	log zerolog.Logger
}

// Open opens (creating if necessary) the sqlite database at path and
// applies schema migrations. path may be ":memory:" for tests.
func Open(path string, log zerolog.Logger) (*DB, error) {
	raw, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The sqlite3 driver does not support concurrent writers; serialize
	// through a single connection, same constraint the teacher documents
	// for pkg/connector's RawDB usage.
	raw.SetMaxOpenConns(1)

	db := &DB{raw: raw, log: log.With().Str("component", "store").Logger()}
	if err := db.migrate(context.Background()); err != nil {
		raw.Close()
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.raw.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS assistant_profiles (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL,
		language TEXT NOT NULL,
		ai_model TEXT NOT NULL,
		style_formality INTEGER NOT NULL,
		style_directness INTEGER NOT NULL,
		style_humor INTEGER NOT NULL,
		style_empathy INTEGER NOT NULL,
		style_motivation INTEGER NOT NULL,
		dialogue_temperature REAL NOT NULL,
		intent_temperature REAL NOT NULL,
		custom_instructions TEXT NOT NULL DEFAULT '',
		requires_confirmation INTEGER NOT NULL DEFAULT 0,
		is_default INTEGER NOT NULL DEFAULT 0,
		is_public INTEGER NOT NULL DEFAULT 0,
		version INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assistant_profiles_owner ON assistant_profiles(owner_id)`,
	`CREATE TABLE IF NOT EXISTS assistant_permissions (
		assistant_id TEXT NOT NULL,
		grantee_id TEXT NOT NULL,
		level INTEGER NOT NULL,
		granted_by TEXT NOT NULL,
		expires_at INTEGER,
		PRIMARY KEY (assistant_id, grantee_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assistant_permissions_grantee ON assistant_permissions(grantee_id)`,
	`CREATE TABLE IF NOT EXISTS sync_objects (
		object_type TEXT NOT NULL,
		object_id TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		data TEXT NOT NULL,
		version INTEGER NOT NULL,
		deleted INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (object_type, object_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sync_objects_version ON sync_objects(version)`,
	`CREATE TABLE IF NOT EXISTS conversation_logs (
		log_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		user_message TEXT NOT NULL,
		intent TEXT NOT NULL,
		confidence REAL NOT NULL,
		entities TEXT NOT NULL,
		reasoning TEXT NOT NULL,
		fallback_used INTEGER NOT NULL,
		processing_time_ms INTEGER NOT NULL,
		corrected_intent TEXT,
		feedback_type TEXT,
		feedback_at INTEGER
	)`,
}

func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.raw.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec migration statement: %w", err)
		}
	}
	return nil
}
