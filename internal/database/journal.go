package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/models"
)

// Journal stores settled practice shots. It is write-mostly: sessions are
// never restored from it.
type Journal struct {
	db *sqlx.DB
}

func NewJournal(db *sqlx.DB) *Journal {
	return &Journal{db: db}
}

// RecordShot inserts one settled shot.
func (j *Journal) RecordShot(ctx context.Context, sessionID string, shot game.Shot) error {
	rec, err := shotRecord(sessionID, shot)
	if err != nil {
		return err
	}
	_, err = j.db.NamedExecContext(ctx, `
		INSERT INTO practice_shots
			(session_id, shot_index, aim_angle, power, impulse, outcome, potted, cue_potted, fired_tick, settle_tick, created_at)
		VALUES
			(:session_id, :shot_index, :aim_angle, :power, :impulse, :outcome, :potted, :cue_potted, :fired_tick, :settle_tick, NOW())
		ON CONFLICT (session_id, shot_index) DO NOTHING`, rec)
	if err != nil {
		return fmt.Errorf("insert practice shot: %w", err)
	}
	return nil
}

// ListShots returns a session's journaled shots in firing order.
func (j *Journal) ListShots(ctx context.Context, sessionID string, limit int) ([]models.ShotRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var shots []models.ShotRecord
	err := j.db.SelectContext(ctx, &shots, `
		SELECT id, session_id, shot_index, aim_angle, power, impulse, outcome, potted,
		       cue_potted, fired_tick, settle_tick, created_at
		FROM practice_shots
		WHERE session_id = $1
		ORDER BY shot_index DESC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list practice shots: %w", err)
	}
	// newest rows were selected; hand them back oldest first
	for i, k := 0, len(shots)-1; i < k; i, k = i+1, k-1 {
		shots[i], shots[k] = shots[k], shots[i]
	}
	return shots, nil
}

// SessionStats aggregates outcomes over every journaled shot of a session.
func (j *Journal) SessionStats(ctx context.Context, sessionID string) (models.SessionStats, error) {
	var stats models.SessionStats
	err := j.db.GetContext(ctx, &stats, `
		SELECT COUNT(*) AS shots,
		       COUNT(*) FILTER (WHERE outcome = 'POTTED') AS potted,
		       COUNT(*) FILTER (WHERE outcome = 'MISS') AS misses,
		       COUNT(*) FILTER (WHERE outcome = 'FOUL') AS fouls,
		       COALESCE(SUM(jsonb_array_length(potted)), 0) AS balls_potted
		FROM practice_shots
		WHERE session_id = $1`, sessionID)
	if err != nil {
		return models.SessionStats{}, fmt.Errorf("practice stats: %w", err)
	}
	return stats, nil
}

func shotRecord(sessionID string, shot game.Shot) (models.ShotRecord, error) {
	potted := shot.Potted
	if potted == nil {
		potted = []game.PottedBall{}
	}
	data, err := json.Marshal(potted)
	if err != nil {
		return models.ShotRecord{}, fmt.Errorf("marshal potted balls: %w", err)
	}
	return models.ShotRecord{
		SessionID:  sessionID,
		ShotIndex:  shot.Index,
		AimAngle:   shot.AimAngle,
		Power:      shot.Power,
		Impulse:    shot.Impulse,
		Outcome:    string(shot.Outcome),
		Potted:     types.JSONText(data),
		CuePotted:  shot.CuePotted,
		FiredTick:  int64(shot.FiredTick),
		SettleTick: int64(shot.SettleTick),
	}, nil
}
