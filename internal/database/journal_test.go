package database

import (
	"encoding/json"
	"testing"

	"github.com/playmatatu/snooker/internal/game"
)

func TestShotRecordMapping(t *testing.T) {
	shot := game.Shot{
		Index:      7,
		AimAngle:   1.5,
		Power:      0.8,
		Impulse:    0.0096,
		Outcome:    game.OutcomePotted,
		Potted:     []game.PottedBall{{BallID: 3, Kind: game.RedKind(), Pocket: game.PocketTM}},
		FiredTick:  40,
		SettleTick: 310,
	}
	rec, err := shotRecord("abc", shot)
	if err != nil {
		t.Fatal(err)
	}
	if rec.SessionID != "abc" || rec.ShotIndex != 7 || rec.Outcome != "POTTED" || rec.SettleTick != 310 {
		t.Errorf("record %+v", rec)
	}

	var potted []map[string]interface{}
	if err := json.Unmarshal(rec.Potted, &potted); err != nil {
		t.Fatalf("potted column is not JSON: %v", err)
	}
	if len(potted) != 1 || potted[0]["kind"] != "red" {
		t.Errorf("potted column %s", rec.Potted)
	}
}

func TestShotRecordEmptyPotted(t *testing.T) {
	rec, err := shotRecord("abc", game.Shot{Index: 1, Outcome: game.OutcomeMiss})
	if err != nil {
		t.Fatal(err)
	}
	if string(rec.Potted) != "[]" {
		t.Errorf("potted = %s, want []", rec.Potted)
	}
}
