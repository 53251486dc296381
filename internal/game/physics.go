package game

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/playmatatu/snooker/internal/config"
)

// StepReport summarises one World.Step call.
type StepReport struct {
	Substeps  int
	Clamped   int   // balls rescaled to the speed cap
	Recovered []int // ids of balls pulled back onto the table
}

// World owns the rigid-body space and applies the stability policy on top of
// it: bounded substeps, a hard speed cap and escape recovery. Collision
// response itself is left to the engine.
type World struct {
	space    *cp.Space
	geom     TableGeometry
	tuning   config.Tuning
	balls    []*Ball
	byID     map[int]*Ball
	cushions []*cp.Shape
	nextID   int
	maxSpeed float64
}

// NewWorld builds an empty gravity-free space with the six cushions.
func NewWorld(geom TableGeometry, tuning config.Tuning) *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	space.SetDamping(1)

	w := &World{
		space:    space,
		geom:     geom,
		tuning:   tuning,
		byID:     make(map[int]*Ball),
		maxSpeed: tuning.Physics.MaxSpeedDiameters * geom.BallDiameter,
	}

	backing := CushionBackingBall * geom.BallDiameter
	for _, c := range geom.Cushions {
		bb := cushionBB(c, backing)
		shape := space.AddShape(cp.NewBox2(space.StaticBody, bb, 0))
		shape.SetElasticity(cushionElasticity(tuning.Physics.CushionRestitution, tuning.Physics.BallRestitution))
		shape.SetFriction(0)
		shape.UserData = c.Name
		w.cushions = append(w.cushions, shape)
	}

	return w
}

// The engine multiplies the elasticities of the two shapes in contact. Balls
// carry sqrt(ball restitution) so a ball pair gets exactly the ball value, and
// cushions carry cushion/sqrt(ball) so a ball-cushion pair gets the cushion
// value.
func ballElasticity(restitution float64) float64 {
	return math.Sqrt(restitution)
}

func cushionElasticity(cushion, ball float64) float64 {
	if ball <= 0 {
		return cushion
	}
	return cushion / math.Sqrt(ball)
}

// cushionBB extends a rail away from the surface so a fast ball cannot step
// through it in one substep.
func cushionBB(c Cushion, backing float64) cp.BB {
	r := c.Rect
	bb := cp.BB{L: r.X, B: r.Y, R: r.Right(), T: r.Bottom()}
	switch {
	case c.Normal.Y > 0: // top rail, grows upward
		bb.B -= backing
	case c.Normal.Y < 0:
		bb.T += backing
	case c.Normal.X > 0: // left rail, grows leftward
		bb.L -= backing
	case c.Normal.X < 0:
		bb.R += backing
	}
	return bb
}

// Geometry returns the table the world was built for.
func (w *World) Geometry() TableGeometry {
	return w.geom
}

// MaxSpeed is the speed cap in table units per reference step.
func (w *World) MaxSpeed() float64 {
	return w.maxSpeed
}

// SpawnBall adds a dynamic ball body at pos and registers it.
func (w *World) SpawnBall(spec BallSpec, pos Vec2) *Ball {
	body := w.space.AddBody(cp.NewBody(spec.Mass, cp.INFINITY))
	body.SetPosition(pos.toCP())

	damping := spec.Damping
	body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, d, dt float64) {
		cp.BodyUpdateVelocity(b, gravity, d*math.Pow(1-damping, dt), dt)
	})

	shape := w.space.AddShape(cp.NewCircle(body, spec.Radius, cp.Vector{}))
	shape.SetElasticity(ballElasticity(spec.Restitution))
	shape.SetFriction(spec.Friction)

	b := &Ball{
		ID:      w.nextID,
		Kind:    spec.Kind,
		Radius:  spec.Radius,
		body:    body,
		shape:   shape,
		prevPos: pos,
	}
	body.UserData = b
	shape.UserData = b
	w.nextID++

	w.balls = append(w.balls, b)
	w.byID[b.ID] = b
	return b
}

// RemoveBall takes a ball out of the engine and marks it potted. Removing an
// already potted ball does nothing.
func (w *World) RemoveBall(b *Ball) {
	if b == nil || b.Potted {
		return
	}
	b.lastPos = b.Position()
	if b.shape != nil {
		w.space.RemoveShape(b.shape)
	}
	if b.body != nil {
		w.space.RemoveBody(b.body)
	}
	b.body = nil
	b.shape = nil
	b.Potted = true
}

// Balls returns every ball ever spawned in this world, potted ones included.
func (w *World) Balls() []*Ball {
	return w.balls
}

// LiveBalls returns the balls still on the table.
func (w *World) LiveBalls() []*Ball {
	live := make([]*Ball, 0, len(w.balls))
	for _, b := range w.balls {
		if b.Live() {
			live = append(live, b)
		}
	}
	return live
}

func (w *World) Ball(id int) (*Ball, bool) {
	b, ok := w.byID[id]
	return b, ok
}

// Cue returns the live cue ball, if any.
func (w *World) Cue() *Ball {
	for _, b := range w.balls {
		if b.Kind.IsCue() && b.Live() {
			return b
		}
	}
	return nil
}

// ApplyImpulse gives a ball an instantaneous impulse through its center.
func (w *World) ApplyImpulse(b *Ball, impulse Vec2) {
	if !b.Live() {
		return
	}
	b.body.ApplyImpulseAtWorldPoint(impulse.toCP(), b.body.Position())
}

// SetPosition teleports a ball. The move does not count as travel for
// swept pocket captures.
func (w *World) SetPosition(b *Ball, p Vec2) {
	if b.Live() {
		b.body.SetPosition(p.toCP())
		b.prevPos = p
	}
}

func (w *World) SetVelocity(b *Ball, v Vec2) {
	if b.Live() {
		b.body.SetVelocityVector(v.toCP())
	}
}

// SubstepCount returns how many equal engine steps cover a frame of deltaMs.
// The frame is first clamped to MaxFrameMs.
func SubstepCount(deltaMs float64, maxSubsteps int) int {
	deltaMs = clampFrame(deltaMs)
	n := int(math.Ceil(deltaMs/RefStepMs - 1e-9))
	if n < 1 {
		n = 1
	}
	if n > maxSubsteps {
		n = maxSubsteps
	}
	return n
}

func clampFrame(deltaMs float64) float64 {
	if math.IsNaN(deltaMs) || deltaMs < 0 {
		return 0
	}
	return math.Min(deltaMs, MaxFrameMs)
}

// Step advances the world by one wall-clock frame.
func (w *World) Step(deltaMs float64) StepReport {
	return w.StepEach(deltaMs, nil)
}

// StepEach is Step with a hook run after every substep, before escape
// recovery. Pocket scans run there so a fast ball is seen while it is still
// over the pocket it entered.
func (w *World) StepEach(deltaMs float64, afterSubstep func()) StepReport {
	deltaMs = clampFrame(deltaMs)
	n := SubstepCount(deltaMs, w.tuning.Physics.MaxSubsteps)
	report := StepReport{Substeps: n}
	if deltaMs == 0 {
		return report
	}

	dt := deltaMs / float64(n) / RefStepMs
	for i := 0; i < n; i++ {
		for _, b := range w.balls {
			if b.Live() {
				b.prevPos = b.Position()
			}
		}
		w.space.Step(dt)
		report.Clamped += w.clampVelocities()
		if afterSubstep != nil {
			afterSubstep()
		}
		report.Recovered = append(report.Recovered, w.recoverEscapes()...)
		w.settle()
	}
	return report
}

// clampVelocities rescales any ball above the speed cap, keeping direction.
func (w *World) clampVelocities() int {
	clamped := 0
	for _, b := range w.balls {
		if !b.Live() {
			continue
		}
		v := b.Velocity()
		speed := v.Magnitude()
		if speed > w.maxSpeed {
			w.SetVelocity(b, v.Times(w.maxSpeed/speed))
			clamped++
		}
	}
	return clamped
}

// recoverEscapes pulls balls that drifted well outside the surface back on
// and stops them. This is a numerical safety net, not a game event.
func (w *World) recoverEscapes() []int {
	var ids []int
	limit := w.tuning.Physics.EscapeRadii * w.geom.BallRadius
	s := w.geom.Surface
	for _, b := range w.balls {
		if !b.Live() {
			continue
		}
		p := b.Position()
		escaped := !p.IsFinite() ||
			p.X < s.X-limit || p.X > s.Right()+limit ||
			p.Y < s.Y-limit || p.Y > s.Bottom()+limit
		if !escaped {
			continue
		}
		target := w.geom.ClampToSurface(p, b.Radius)
		if !p.IsFinite() {
			target = s.Center()
		}
		w.SetPosition(b, target)
		w.SetVelocity(b, Vec2{})
		log.Printf("[PHYSICS] Ball %d (%s) escaped to (%.1f, %.1f), recovered at (%.1f, %.1f)",
			b.ID, b.Kind, p.X, p.Y, target.X, target.Y)
		ids = append(ids, b.ID)
	}
	return ids
}

// settle snaps slow balls to rest.
func (w *World) settle() {
	for _, b := range w.balls {
		if b.Live() && w.atRest(b.Velocity()) && !b.Velocity().IsZero() {
			w.SetVelocity(b, Vec2{})
		}
	}
}

func (w *World) atRest(v Vec2) bool {
	th := w.tuning.Physics.RestThreshold
	return math.Abs(v.X) < th && math.Abs(v.Y) < th
}

// IsAtRest reports whether a live ball is below the rest threshold.
func (w *World) IsAtRest(b *Ball) bool {
	return !b.Live() || w.atRest(b.Velocity())
}

// AnyMoving reports whether any live ball is above the rest threshold.
func (w *World) AnyMoving() bool {
	for _, b := range w.balls {
		if b.Live() && !w.atRest(b.Velocity()) {
			return true
		}
	}
	return false
}
