package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/syncengine"
)

// SyncStore is a sqlite-backed syncengine.Store. Object data is stored as
// serialized JSON since SyncVersionedObject payloads are caller-defined
// (spec §3.1 "every sync-eligible domain type... carries a version
// field" - the schema itself is the domain service's concern, not this
// module's).
type SyncStore struct {
	db *DB
}

func NewSyncStore(db *DB) *SyncStore {
	return &SyncStore{db: db}
}

func (s *SyncStore) Get(ctx context.Context, objectType, objectID string) (syncengine.Object, bool, error) {
	row := s.db.raw.QueryRowContext(ctx, `
		SELECT object_type, object_id, owner_id, data, version, deleted
		FROM sync_objects WHERE object_type = ? AND object_id = ?
	`, objectType, objectID)
	obj, err := scanSyncObject(row)
	if err == sql.ErrNoRows {
		return syncengine.Object{}, false, nil
	}
	if err != nil {
		return syncengine.Object{}, false, fmt.Errorf("get sync object: %w", err)
	}
	return obj, true, nil
}

func (s *SyncStore) Put(ctx context.Context, obj syncengine.Object) error {
	payload, err := json.Marshal(obj.Data)
	if err != nil {
		return fmt.Errorf("marshal sync object data: %w", err)
	}
	_, err = s.db.raw.ExecContext(ctx, `
		INSERT INTO sync_objects (object_type, object_id, owner_id, data, version, deleted)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(object_type, object_id) DO UPDATE SET
			owner_id = excluded.owner_id, data = excluded.data, version = excluded.version, deleted = excluded.deleted
	`, obj.Type, obj.ID, obj.OwnerID, string(payload), obj.Version, boolToInt(obj.Deleted))
	if err != nil {
		return fmt.Errorf("put sync object: %w", err)
	}
	return nil
}

func (s *SyncStore) Delete(ctx context.Context, objectType, objectID string) error {
	if _, err := s.db.raw.ExecContext(ctx, `DELETE FROM sync_objects WHERE object_type = ? AND object_id = ?`, objectType, objectID); err != nil {
		return fmt.Errorf("delete sync object: %w", err)
	}
	return nil
}

func (s *SyncStore) ListSince(ctx context.Context, sinceVersion int64, objectTypes []string) ([]syncengine.Object, error) {
	query := `SELECT object_type, object_id, owner_id, data, version, deleted FROM sync_objects WHERE version > ?`
	args := []any{sinceVersion}
	if len(objectTypes) > 0 {
		placeholders, typeArgs := inClause(objectTypes)
		query += ` AND object_type IN (` + placeholders + `)`
		args = append(args, typeArgs...)
	}
	return s.query(ctx, query, args...)
}

func (s *SyncStore) ListAll(ctx context.Context, objectType string) ([]syncengine.Object, error) {
	if objectType == "" {
		return s.query(ctx, `SELECT object_type, object_id, owner_id, data, version, deleted FROM sync_objects`)
	}
	return s.query(ctx, `SELECT object_type, object_id, owner_id, data, version, deleted FROM sync_objects WHERE object_type = ?`, objectType)
}

func (s *SyncStore) query(ctx context.Context, query string, args ...any) ([]syncengine.Object, error) {
	rows, err := s.db.raw.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sync objects: %w", err)
	}
	defer rows.Close()

	var out []syncengine.Object
	for rows.Next() {
		obj, err := scanSyncObject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sync object: %w", err)
		}
		out = append(out, obj)
	}
	return out, rows.Err()
}

func scanSyncObject(row rowScanner) (syncengine.Object, error) {
	var obj syncengine.Object
	var payload string
	var deleted int
	if err := row.Scan(&obj.Type, &obj.ID, &obj.OwnerID, &payload, &obj.Version, &deleted); err != nil {
		return syncengine.Object{}, err
	}
	obj.Deleted = deleted != 0
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &obj.Data); err != nil {
			return syncengine.Object{}, fmt.Errorf("unmarshal sync object data: %w", err)
		}
	}
	return obj, nil
}

func inClause(values []string) (string, []any) {
	placeholders := ""
	args := make([]any, len(values))
	for i, v := range values {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args[i] = v
	}
	return placeholders, args
}
