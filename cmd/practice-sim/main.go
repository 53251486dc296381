package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/database"
	"github.com/playmatatu/snooker/internal/game"
)

// maxSettleTicks bounds one shot; a ball rolling this long is a physics bug.
const maxSettleTicks = 20000

func main() {
	layout := flag.Int("layout", 1, "layout mode: 1 standard, 2 clustered, 3 practice")
	seed := flag.Uint64("seed", 1, "layout and stroke seed")
	shots := flag.Int("shots", 10, "number of strokes to play")
	length := flag.Float64("length", 0, "table length (0 uses TABLE_LENGTH)")
	power := flag.Float64("power", 0.7, "stroke power in [0,1]")
	spread := flag.Float64("spread", 0.35, "max aim deviation in radians from the centre line")
	journal := flag.Bool("journal", false, "record shots in DATABASE_URL")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	opts := game.Options{
		TableLength: cfg.TableLength,
		Layout:      game.LayoutMode(*layout),
		Seed:        *seed,
		Tuning:      cfg.Tuning,
	}
	if *length > 0 {
		opts.TableLength = *length
	}
	sim, err := game.NewSimulation(opts)
	if err != nil {
		log.Fatalf("Failed to build table: %v", err)
	}

	var j *database.Journal
	if *journal {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		j = database.NewJournal(db)
	}

	sessionID := "sim-" + uuid.NewString()[:8]
	log.Printf("[SIM] Session %s: layout=%s seed=%d length=%.0f", sessionID, opts.Layout, *seed, sim.Geometry().TableLength)

	rng := rand.New(rand.NewPCG(*seed, *seed^0x5bd1e995))
	played := 0
	for played < *shots {
		if over, reason := sim.FrameOver(); over {
			log.Printf("[SIM] Frame over: %s", reason)
			break
		}
		if sim.Phase() == game.PhaseNoCueBall {
			if err := placeCue(sim); err != nil {
				log.Fatalf("Failed to place cue ball: %v", err)
			}
		}

		aim := (rng.Float64()*2 - 1) * *spread
		sim.SetAimAngle(aim)
		sim.SetPower(*power)
		if err := sim.FireShot(); err != nil {
			log.Fatalf("Shot %d rejected: %v", played+1, err)
		}

		shot, err := runUntilSettled(sim)
		if err != nil {
			log.Fatalf("Shot %d: %v", played+1, err)
		}
		played++
		printShot(shot)

		if j != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := j.RecordShot(ctx, sessionID, shot); err != nil {
				log.Printf("[DB] Failed to record shot %d: %v", shot.Index, err)
			}
			cancel()
		}
	}

	summarize(sim.ShotLog().Shots())
}

// placeCue puts the cue ball halfway between the brown spot and the back of
// the D.
func placeCue(sim *game.Simulation) error {
	g := sim.Geometry()
	for _, dy := range []float64{0, 1, -1, 2, -2} {
		p := game.Vec2{X: g.DCenter.X - g.DRadius/2, Y: g.DCenter.Y + dy*g.BallDiameter*1.5}
		if err := sim.PlaceCueBall(p); err == nil {
			return nil
		}
	}
	return game.ErrInvalidPlacement
}

// runUntilSettled ticks at the reference rate until the open shot closes.
func runUntilSettled(sim *game.Simulation) (game.Shot, error) {
	for i := 0; i < maxSettleTicks; i++ {
		for _, ev := range sim.Tick(game.Input{DeltaMs: game.RefStepMs}) {
			switch ev.Type {
			case game.EventAnomaly:
				log.Printf("[SIM] Anomaly on ball %d: %s", ev.BallID, ev.Reason)
			case game.EventShotSettled:
				return *ev.Shot, nil
			}
		}
	}
	return game.Shot{}, fmt.Errorf("balls still moving after %d ticks", maxSettleTicks)
}

func printShot(s game.Shot) {
	line := fmt.Sprintf("#%-3d aim=%+.3f power=%.2f %-7s", s.Index, s.AimAngle, s.Power, s.Outcome)
	for _, p := range s.Potted {
		line += fmt.Sprintf(" %s->%s", p.Kind, p.Pocket)
	}
	if s.CuePotted {
		line += " (cue potted)"
	}
	fmt.Println(line)
}

func summarize(shots []game.Shot) {
	counts := map[game.Outcome]int{}
	balls := 0
	for _, s := range shots {
		counts[s.Outcome]++
		balls += len(s.Potted)
	}
	rate := 0.0
	if len(shots) > 0 {
		rate = float64(counts[game.OutcomePotted]) / float64(len(shots))
	}
	fmt.Printf("\n%d shots: %d potted, %d missed, %d fouls, %d balls (%.0f%% pot rate)\n",
		len(shots), counts[game.OutcomePotted], counts[game.OutcomeMiss], counts[game.OutcomeFoul],
		balls, math.Round(rate*100))
}
