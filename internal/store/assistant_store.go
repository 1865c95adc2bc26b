package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Mobile-Mind-AI/selfos-sub000/internal/aimodels"
	"github.com/Mobile-Mind-AI/selfos-sub000/internal/assistant"
)

// AssistantStore is a sqlite-backed assistant.Store.
type AssistantStore struct {
	db *DB
}

func NewAssistantStore(db *DB) *AssistantStore {
	return &AssistantStore{db: db}
}

func (s *AssistantStore) Create(ctx context.Context, p assistant.Profile) (assistant.Profile, error) {
	clampProfile(&p)

	tx, err := s.db.raw.BeginTx(ctx, nil)
	if err != nil {
		return assistant.Profile{}, fmt.Errorf("begin create assistant profile: %w", err)
	}
	defer tx.Rollback()

	var owned int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM assistant_profiles WHERE owner_id = ?`, p.OwnerID).Scan(&owned); err != nil {
		return assistant.Profile{}, fmt.Errorf("count owner profiles: %w", err)
	}
	if owned >= assistant.MaxProfilesPerUser {
		return assistant.Profile{}, aimodels.ErrValidation
	}

	if p.IsDefault {
		if _, err := tx.ExecContext(ctx, `UPDATE assistant_profiles SET is_default = 0 WHERE owner_id = ?`, p.OwnerID); err != nil {
			return assistant.Profile{}, fmt.Errorf("clear prior default: %w", err)
		}
	}

	if err := insertProfile(ctx, tx, p); err != nil {
		return assistant.Profile{}, err
	}
	if err := tx.Commit(); err != nil {
		return assistant.Profile{}, fmt.Errorf("commit create assistant profile: %w", err)
	}
	return p, nil
}

func insertProfile(ctx context.Context, tx *sql.Tx, p assistant.Profile) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO assistant_profiles (
			id, owner_id, name, language, ai_model,
			style_formality, style_directness, style_humor, style_empathy, style_motivation,
			dialogue_temperature, intent_temperature, custom_instructions,
			requires_confirmation, is_default, is_public, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.OwnerID, p.Name, p.Language, p.AIModel,
		p.Style.Formality, p.Style.Directness, p.Style.Humor, p.Style.Empathy, p.Style.Motivation,
		p.DialogueTemperature, p.IntentTemperature, p.CustomInstructions,
		boolToInt(p.RequiresConfirmation), boolToInt(p.IsDefault), boolToInt(p.IsPublic), p.Version,
	)
	if err != nil {
		return fmt.Errorf("insert assistant profile: %w", err)
	}
	return nil
}

func (s *AssistantStore) Get(ctx context.Context, id string) (assistant.Profile, error) {
	row := s.db.raw.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM assistant_profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return assistant.Profile{}, aimodels.ErrNotFound
	}
	if err != nil {
		return assistant.Profile{}, fmt.Errorf("get assistant profile: %w", err)
	}
	return p, nil
}

func (s *AssistantStore) ListByOwner(ctx context.Context, ownerID string) ([]assistant.Profile, error) {
	rows, err := s.db.raw.QueryContext(ctx, `SELECT `+profileColumns+` FROM assistant_profiles WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list assistant profiles: %w", err)
	}
	defer rows.Close()

	var out []assistant.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assistant profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *AssistantStore) Update(ctx context.Context, id string, mutate func(p *assistant.Profile) error) (assistant.Profile, error) {
	tx, err := s.db.raw.BeginTx(ctx, nil)
	if err != nil {
		return assistant.Profile{}, fmt.Errorf("begin update assistant profile: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM assistant_profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	if err == sql.ErrNoRows {
		return assistant.Profile{}, aimodels.ErrNotFound
	}
	if err != nil {
		return assistant.Profile{}, fmt.Errorf("load assistant profile for update: %w", err)
	}

	if err := mutate(&p); err != nil {
		return assistant.Profile{}, err
	}
	clampProfile(&p)
	p.Version = nowMillis()

	if p.IsDefault {
		if _, err := tx.ExecContext(ctx, `UPDATE assistant_profiles SET is_default = 0 WHERE owner_id = ? AND id != ?`, p.OwnerID, p.ID); err != nil {
			return assistant.Profile{}, fmt.Errorf("clear prior default: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE assistant_profiles SET
			name = ?, language = ?, ai_model = ?,
			style_formality = ?, style_directness = ?, style_humor = ?, style_empathy = ?, style_motivation = ?,
			dialogue_temperature = ?, intent_temperature = ?, custom_instructions = ?,
			requires_confirmation = ?, is_default = ?, is_public = ?, version = ?
		WHERE id = ?
	`,
		p.Name, p.Language, p.AIModel,
		p.Style.Formality, p.Style.Directness, p.Style.Humor, p.Style.Empathy, p.Style.Motivation,
		p.DialogueTemperature, p.IntentTemperature, p.CustomInstructions,
		boolToInt(p.RequiresConfirmation), boolToInt(p.IsDefault), boolToInt(p.IsPublic), p.Version,
		p.ID,
	)
	if err != nil {
		return assistant.Profile{}, fmt.Errorf("update assistant profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return assistant.Profile{}, fmt.Errorf("commit update assistant profile: %w", err)
	}
	return p, nil
}

func (s *AssistantStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.raw.ExecContext(ctx, `DELETE FROM assistant_profiles WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete assistant profile: %w", err)
	}
	return nil
}

func (s *AssistantStore) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int
	if err := s.db.raw.QueryRowContext(ctx, `SELECT COUNT(*) FROM assistant_profiles WHERE owner_id = ?`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count assistant profiles: %w", err)
	}
	return n, nil
}

const profileColumns = `
	id, owner_id, name, language, ai_model,
	style_formality, style_directness, style_humor, style_empathy, style_motivation,
	dialogue_temperature, intent_temperature, custom_instructions,
	requires_confirmation, is_default, is_public, version
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (assistant.Profile, error) {
	var p assistant.Profile
	var requiresConfirmation, isDefault, isPublic int
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Language, &p.AIModel,
		&p.Style.Formality, &p.Style.Directness, &p.Style.Humor, &p.Style.Empathy, &p.Style.Motivation,
		&p.DialogueTemperature, &p.IntentTemperature, &p.CustomInstructions,
		&requiresConfirmation, &isDefault, &isPublic, &p.Version,
	)
	if err != nil {
		return assistant.Profile{}, err
	}
	p.RequiresConfirmation = requiresConfirmation != 0
	p.IsDefault = isDefault != 0
	p.IsPublic = isPublic != 0
	return p, nil
}

// clampProfile enforces the same [0,100]/[0,2] bounds assistant.MemoryStore
// applies in-process, so a profile round-tripped through sqlite satisfies
// spec §3.1 regardless of which Store implementation is wired.
func clampProfile(p *assistant.Profile) {
	p.Style.Formality = assistant.ClampTrait(p.Style.Formality)
	p.Style.Directness = assistant.ClampTrait(p.Style.Directness)
	p.Style.Humor = assistant.ClampTrait(p.Style.Humor)
	p.Style.Empathy = assistant.ClampTrait(p.Style.Empathy)
	p.Style.Motivation = assistant.ClampTrait(p.Style.Motivation)
	p.DialogueTemperature = assistant.ClampTemperature(p.DialogueTemperature)
	p.IntentTemperature = assistant.ClampTemperature(p.IntentTemperature)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
