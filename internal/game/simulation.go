package game

import (
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand/v2"

	"github.com/playmatatu/snooker/internal/config"
)

var (
	ErrInvalidPlacement = errors.New("cue ball must be placed inside the D, clear of other balls")
	ErrShotRejected     = errors.New("shot rejected: no cue ball or balls still moving")
	ErrAimLocked        = errors.New("aim can only change while the cue ball is ready")
	ErrInvalidAim       = errors.New("aim angle and power must be finite")
	ErrFrameOver        = errors.New("frame is over, reset the layout")
)

// Options configures a new Simulation.
type Options struct {
	TableLength float64
	Canvas      Size
	Layout      LayoutMode
	Seed        uint64
	Tuning      config.Tuning
}

// Input is what one tick consumes: elapsed wall-clock time and the commands
// queued since the last tick.
type Input struct {
	DeltaMs  float64
	Commands []Command
}

// Simulation is the single owner of a table, its balls and the shot in
// progress. It is not safe for concurrent use; the host serialises access.
type Simulation struct {
	opts     Options
	tuning   config.Tuning
	rng      *rand.Rand
	geom     TableGeometry
	world    *World
	detector *PottingDetector
	layout   LayoutMode

	phase       Phase
	aimAngle    float64
	power       float64
	predictorOn bool
	prediction  *Prediction

	shot      *Shot
	shotCount int
	log       *ShotLog

	frameReason string
	tick        uint64
	pending     []Event
}

// NewSimulation builds the table and racks the requested layout. The cue
// ball starts absent.
func NewSimulation(opts Options) (*Simulation, error) {
	mode, err := ParseLayoutMode(int(opts.Layout))
	if err != nil {
		return nil, err
	}
	s := &Simulation{
		opts:   opts,
		tuning: opts.Tuning,
		rng:    rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		power:  0.5,
		log:    NewShotLog(opts.Tuning.Shot.LogCapacity),
	}
	s.geom = ComputeGeometry(opts.TableLength, opts.Canvas, s.tuning.Pockets.CaptureMultiplier)
	s.rebuild(mode)
	s.pending = nil
	return s, nil
}

// rebuild discards every body and the open shot, then racks a fresh layout
// on the current geometry. The new world is built before anything is
// swapped, so a half-built table is never visible.
func (s *Simulation) rebuild(mode LayoutMode) {
	gen := NewLayoutGenerator(s.geom, s.rng, s.tuning.Layout.OverlapMultiplier, s.tuning.Layout.ClusterAttempts)
	layout, _ := gen.Generate(mode, nil)

	world := NewWorld(s.geom, s.tuning)
	for _, p := range layout.Reds {
		world.SpawnBall(NewBallSpec(RedKind(), s.geom, s.tuning), p)
	}
	for _, c := range Colours {
		world.SpawnBall(NewBallSpec(ColourKind(c), s.geom, s.tuning), layout.Colours[c])
	}

	s.world = world
	s.detector = NewPottingDetector(s.geom)
	s.layout = mode
	s.phase = PhaseNoCueBall
	s.shot = nil
	s.frameReason = ""
	s.prediction = nil
}

func (s *Simulation) emit(e Event) {
	e.Tick = s.tick
	s.pending = append(s.pending, e)
}

// Tick applies queued commands, advances physics by one frame, resolves pots
// and closes the open shot once everything is still. It returns every event
// produced since the previous tick, including those from direct command calls.
func (s *Simulation) Tick(in Input) []Event {
	s.tick++
	for _, cmd := range in.Commands {
		if err := cmd.Apply(s); err != nil {
			s.emit(Event{Type: EventRejected, Reason: fmt.Sprintf("%s: %v", cmd.Type, err)})
		}
	}

	var pots []PotEvent
	report := s.world.StepEach(in.DeltaMs, func() {
		pots = append(pots, s.detector.Scan(s.world)...)
	})
	for _, id := range report.Recovered {
		s.emit(Event{Type: EventAnomaly, BallID: id, Reason: "ball escaped the table and was recovered"})
	}

	// balls moved by commands since the last substep
	pots = append(pots, s.detector.Scan(s.world)...)
	for _, pot := range pots {
		s.handlePot(pot)
	}

	if s.shot != nil && !s.world.AnyMoving() {
		s.settle()
	}

	s.refreshPrediction()

	events := s.pending
	s.pending = nil
	return events
}

func (s *Simulation) handlePot(pot PotEvent) {
	p := pot
	if s.shot != nil {
		s.shot.record(pot)
	}
	if pot.Kind.IsCue() {
		s.emit(Event{Type: EventCuePotted, Pot: &p, BallID: pot.BallID})
		return
	}
	s.emit(Event{Type: EventPot, Pot: &p, BallID: pot.BallID})

	if pot.Kind.IsBlack() && s.redsRemaining() == 0 && s.phase != PhaseFrameOver {
		s.phase = PhaseFrameOver
		s.frameReason = "black potted after all reds"
		log.Printf("[GAME] Frame over at tick %d: %s", s.tick, s.frameReason)
		s.emit(Event{Type: EventFrameOver, BallID: pot.BallID, Reason: s.frameReason})
	}
}

func (s *Simulation) redsRemaining() int {
	n := 0
	for _, b := range s.world.LiveBalls() {
		if b.Kind.IsRed() {
			n++
		}
	}
	return n
}

// settle classifies the open shot and moves it into the log.
func (s *Simulation) settle() {
	shot := *s.shot
	shot.Outcome = shot.classify()
	shot.SettleTick = s.tick
	s.shot = nil
	s.log.Append(shot)
	s.emit(Event{Type: EventShotSettled, Shot: &shot})

	if s.phase == PhaseFrameOver {
		return
	}
	if s.world.Cue() == nil {
		s.phase = PhaseNoCueBall
	} else {
		s.phase = PhaseReady
	}
}

// PlaceCueBall puts the cue ball in hand at p.
func (s *Simulation) PlaceCueBall(p Vec2) error {
	if s.phase == PhaseFrameOver {
		return ErrFrameOver
	}
	if s.phase != PhaseNoCueBall || !s.geom.PointInD(p) {
		return ErrInvalidPlacement
	}
	live := s.world.LiveBalls()
	occupied := make([]Vec2, 0, len(live))
	for _, b := range live {
		occupied = append(occupied, b.Position())
	}
	if !fitsAmong(s.geom, p, occupied, s.tuning.Layout.OverlapMultiplier*s.geom.BallRadius) {
		return ErrInvalidPlacement
	}

	cue := s.world.SpawnBall(NewBallSpec(CueKind(), s.geom, s.tuning), p)
	s.phase = PhaseReady
	s.emit(Event{Type: EventPlacement, BallID: cue.ID, Point: &p})
	s.refreshPrediction()
	return nil
}

// SetAimAngle sets the stroke direction in radians.
func (s *Simulation) SetAimAngle(angle float64) error {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return ErrInvalidAim
	}
	if !s.phase.Aiming() {
		return ErrAimLocked
	}
	s.aimAngle = math.Remainder(angle, 2*math.Pi)
	s.refreshPrediction()
	return nil
}

// SetPower sets stroke power; values outside [0,1] are clamped.
func (s *Simulation) SetPower(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidAim
	}
	if !s.phase.Aiming() {
		return ErrAimLocked
	}
	s.power = math.Min(math.Max(v, 0), 1)
	return nil
}

// FireShot strikes the cue ball with a single impulse along the aim line.
func (s *Simulation) FireShot() error {
	if s.phase == PhaseFrameOver {
		return ErrFrameOver
	}
	cue := s.world.Cue()
	if s.phase != PhaseReady || cue == nil || !s.world.IsAtRest(cue) || s.world.AnyMoving() {
		return ErrShotRejected
	}

	s.shotCount++
	magnitude := s.tuning.Shot.BaseForce * s.power
	s.shot = &Shot{
		Index:     s.shotCount,
		AimAngle:  s.aimAngle,
		Power:     s.power,
		Impulse:   magnitude,
		Potted:    []PottedBall{},
		FiredTick: s.tick,
	}
	s.world.ApplyImpulse(cue, FromAngle(s.aimAngle).Times(magnitude))
	s.phase = PhaseInFlight
	s.prediction = nil

	fired := *s.shot
	s.emit(Event{Type: EventShotFired, Shot: &fired, BallID: cue.ID})
	return nil
}

// ResetLayout discards the table and racks a new layout. The shot log and
// counter survive.
func (s *Simulation) ResetLayout(mode int) error {
	m, err := ParseLayoutMode(mode)
	if err != nil {
		return err
	}
	s.rebuild(m)
	log.Printf("[GAME] Layout reset to %s", m)
	s.emit(Event{Type: EventLayoutReset, Reason: m.String()})
	return nil
}

// TogglePredictor flips the aim preview on or off.
func (s *Simulation) TogglePredictor() {
	s.predictorOn = !s.predictorOn
	s.refreshPrediction()
}

// Resize recomputes geometry for a new canvas and rebuilds the table in the
// current layout mode.
func (s *Simulation) Resize(canvas Size) error {
	if canvas.W < 0 || canvas.H < 0 || math.IsNaN(canvas.W) || math.IsNaN(canvas.H) {
		return fmt.Errorf("invalid canvas %vx%v", canvas.W, canvas.H)
	}
	s.opts.Canvas = canvas
	s.geom = ComputeGeometry(s.opts.TableLength, canvas, s.tuning.Pockets.CaptureMultiplier)
	s.rebuild(s.layout)
	s.emit(Event{Type: EventResized, Reason: fmt.Sprintf("%.0fx%.0f", canvas.W, canvas.H)})
	return nil
}

func (s *Simulation) refreshPrediction() {
	cue := s.world.Cue()
	if !s.predictorOn || s.phase != PhaseReady || cue == nil {
		s.prediction = nil
		return
	}
	p := s.Predict(cue.Position(), FromAngle(s.aimAngle))
	s.prediction = &p
}

// Predict runs the trajectory predictor against the current table. The
// origin is treated as the cue ball's center.
func (s *Simulation) Predict(origin, direction Vec2) Prediction {
	in := PredictorInput{
		Surface:    s.geom.Surface,
		BallRadius: s.geom.BallRadius,
		Origin:     origin,
		Direction:  direction,
		MaxBounces: s.tuning.Predictor.MaxBounces,
	}
	for _, b := range s.world.LiveBalls() {
		if b.Kind.IsCue() {
			continue
		}
		in.Balls = append(in.Balls, PredictorBall{ID: b.ID, Position: b.Position(), Radius: b.Radius})
	}
	return Predict(in)
}

func (s *Simulation) Phase() Phase              { return s.phase }
func (s *Simulation) Geometry() TableGeometry   { return s.geom }
func (s *Simulation) Layout() LayoutMode        { return s.layout }
func (s *Simulation) ShotLog() *ShotLog         { return s.log }
func (s *Simulation) FrameOver() (bool, string) { return s.phase == PhaseFrameOver, s.frameReason }
func (s *Simulation) AnyMoving() bool           { return s.world.AnyMoving() }
