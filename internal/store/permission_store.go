package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/permission"
)

// PermissionStore is a sqlite-backed permission.Store.
type PermissionStore struct {
	db *DB
}

func NewPermissionStore(db *DB) *PermissionStore {
	return &PermissionStore{db: db}
}

func (s *PermissionStore) Get(ctx context.Context, assistantID, granteeID string) (permission.Grant, bool, error) {
	row := s.db.raw.QueryRowContext(ctx, `
		SELECT assistant_id, grantee_id, level, granted_by, expires_at
		FROM assistant_permissions WHERE assistant_id = ? AND grantee_id = ?
	`, assistantID, granteeID)
	g, err := scanGrant(row)
	if err == sql.ErrNoRows {
		return permission.Grant{}, false, nil
	}
	if err != nil {
		return permission.Grant{}, false, fmt.Errorf("get permission grant: %w", err)
	}
	return g, true, nil
}

func (s *PermissionStore) Upsert(ctx context.Context, g permission.Grant) error {
	var expiresAt any
	if g.ExpiresAt != nil {
		expiresAt = g.ExpiresAt.UnixMilli()
	}
	_, err := s.db.raw.ExecContext(ctx, `
		INSERT INTO assistant_permissions (assistant_id, grantee_id, level, granted_by, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(assistant_id, grantee_id) DO UPDATE SET
			level = excluded.level, granted_by = excluded.granted_by, expires_at = excluded.expires_at
	`, g.AssistantID, g.GranteeID, int(g.Level), g.GrantedBy, expiresAt)
	if err != nil {
		return fmt.Errorf("upsert permission grant: %w", err)
	}
	return nil
}

func (s *PermissionStore) Delete(ctx context.Context, assistantID, granteeID string) error {
	if _, err := s.db.raw.ExecContext(ctx, `DELETE FROM assistant_permissions WHERE assistant_id = ? AND grantee_id = ?`, assistantID, granteeID); err != nil {
		return fmt.Errorf("delete permission grant: %w", err)
	}
	return nil
}

func (s *PermissionStore) ListForAssistant(ctx context.Context, assistantID string) ([]permission.Grant, error) {
	return s.list(ctx, `WHERE assistant_id = ?`, assistantID)
}

func (s *PermissionStore) ListForGrantee(ctx context.Context, granteeID string) ([]permission.Grant, error) {
	return s.list(ctx, `WHERE grantee_id = ?`, granteeID)
}

func (s *PermissionStore) ListAll(ctx context.Context) ([]permission.Grant, error) {
	return s.list(ctx, ``)
}

func (s *PermissionStore) list(ctx context.Context, where string, args ...any) ([]permission.Grant, error) {
	rows, err := s.db.raw.QueryContext(ctx, `
		SELECT assistant_id, grantee_id, level, granted_by, expires_at
		FROM assistant_permissions `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list permission grants: %w", err)
	}
	defer rows.Close()

	var out []permission.Grant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan permission grant: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *PermissionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := s.db.raw.ExecContext(ctx, `
		DELETE FROM assistant_permissions WHERE expires_at IS NOT NULL AND expires_at <= ?
	`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete expired permission grants: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count expired permission grants: %w", err)
	}
	return int(n), nil
}

func scanGrant(row rowScanner) (permission.Grant, error) {
	var g permission.Grant
	var level int
	var expiresAt sql.NullInt64
	if err := row.Scan(&g.AssistantID, &g.GranteeID, &level, &g.GrantedBy, &expiresAt); err != nil {
		return permission.Grant{}, err
	}
	g.Level = permission.Level(level)
	if expiresAt.Valid {
		t := time.UnixMilli(expiresAt.Int64)
		g.ExpiresAt = &t
	}
	return g, nil
}
