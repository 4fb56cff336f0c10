package store

import (
	"context"
	"encoding/json"
	"errors"

	"cursed-focus/internal/game"

	"github.com/jackc/pgx/v5"
)

// One snapshot per deployment; the id is fixed.
const snapshotID = "default"

// LoadState returns the persisted snapshot merged over the canonical
// defaults, so a partial or schema-evolved record still loads. ErrNotFound
// means first launch.
func (s *Store) LoadState(ctx context.Context) (*game.State, error) {
	var raw []byte
	err := s.Pool.QueryRow(ctx,
		`SELECT snapshot FROM focus_state WHERE id = $1`, snapshotID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	// Unmarshal over the defaults: absent fields keep their default value,
	// nested objects merge field by field.
	st := game.DefaultState()
	if err := json.Unmarshal(raw, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Store) SaveState(ctx context.Context, st *game.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO focus_state (id, snapshot, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = now()`,
		snapshotID, raw)
	return err
}

func (s *Store) ClearState(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM focus_state WHERE id = $1`, snapshotID)
	return err
}
