package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"leadnest/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

// State is the onboarding progress of a business.
type State struct {
	Step      int
	Completed bool
	Settings  map[string]any
}

// AdvanceParams describes one onboarding write. Completed only ever sets the
// flag. Nil ServiceTypes and Email leave the columns alone. SettingsPatch is
// shallow-merged into settings.
type AdvanceParams struct {
	Step          int
	Completed     bool
	ServiceTypes  []string
	Email         *string
	SettingsPatch map[string]any
}

const (
	lockSettingsQuery = `SELECT settings FROM businesses WHERE id = $1 FOR UPDATE`

	advanceQuery = `
		UPDATE businesses SET
			onboarding_step = $2,
			onboarding_completed = onboarding_completed OR $3,
			service_types = COALESCE($4::text[], service_types),
			email = COALESCE($5, email),
			settings = $6::jsonb,
			updated_at = now()
		WHERE id = $1
		RETURNING onboarding_step, onboarding_completed, settings`

	selectStateQuery = `SELECT onboarding_step, onboarding_completed, settings FROM businesses WHERE id = $1`
)

type Repository struct {
	pool db.Pool
}

func New(pool db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Advance applies p while holding the business row lock, so two concurrent
// merges both land.
func (r *Repository) Advance(ctx context.Context, businessID uuid.UUID, p AdvanceParams) (State, error) {
	var state State
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var raw []byte
		if err := tx.QueryRow(ctx, lockSettingsQuery, businessID).Scan(&raw); err != nil {
			return err
		}
		current, err := decodeSettings(raw)
		if err != nil {
			return err
		}

		merged, err := json.Marshal(MergeSettings(current, p.SettingsPatch))
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}

		var out []byte
		err = tx.QueryRow(ctx, advanceQuery, businessID, p.Step, p.Completed, p.ServiceTypes, p.Email, string(merged)).
			Scan(&state.Step, &state.Completed, &out)
		if err != nil {
			return err
		}
		state.Settings, err = decodeSettings(out)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return State{}, ErrNotFound
	}
	return state, err
}

func (r *Repository) Get(ctx context.Context, businessID uuid.UUID) (State, error) {
	var state State
	var raw []byte
	err := r.pool.QueryRow(ctx, selectStateQuery, businessID).Scan(&state.Step, &state.Completed, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, err
	}
	state.Settings, err = decodeSettings(raw)
	return state, err
}

// MergeSettings returns current with every key of patch set. Keys absent
// from patch are preserved. current is not modified.
func MergeSettings(current, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(current)+len(patch))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

func decodeSettings(raw []byte) (map[string]any, error) {
	settings := map[string]any{}
	if len(raw) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}
