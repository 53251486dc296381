package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ShotRecord is one settled practice shot as stored in practice_shots
type ShotRecord struct {
	ID         int            `db:"id" json:"id"`
	SessionID  string         `db:"session_id" json:"session_id"`
	ShotIndex  int            `db:"shot_index" json:"shot_index"`
	AimAngle   float64        `db:"aim_angle" json:"aim_angle"`
	Power      float64        `db:"power" json:"power"`
	Impulse    float64        `db:"impulse" json:"impulse"`
	Outcome    string         `db:"outcome" json:"outcome"`
	Potted     types.JSONText `db:"potted" json:"potted"`
	CuePotted  bool           `db:"cue_potted" json:"cue_potted"`
	FiredTick  int64          `db:"fired_tick" json:"fired_tick"`
	SettleTick int64          `db:"settle_tick" json:"settle_tick"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
}

// SessionStats summarizes the journal of one session
type SessionStats struct {
	Shots       int `db:"shots" json:"shots"`
	Potted      int `db:"potted" json:"potted"`
	Misses      int `db:"misses" json:"misses"`
	Fouls       int `db:"fouls" json:"fouls"`
	BallsPotted int `db:"balls_potted" json:"balls_potted"`
}
