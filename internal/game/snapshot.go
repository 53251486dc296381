package game

// BallState is the read-only view of one ball.
type BallState struct {
	ID       int      `json:"id"`
	Kind     BallKind `json:"kind"`
	Position Vec2     `json:"position"`
	Velocity Vec2     `json:"velocity"`
	Potted   bool     `json:"potted"`
}

// Snapshot is everything a presentation layer needs to draw one frame. Ball
// and shot data are copies; the geometry is shared but never mutated.
type Snapshot struct {
	Tick             uint64        `json:"tick"`
	Phase            Phase         `json:"phase"`
	Layout           LayoutMode    `json:"layout"`
	Balls            []BallState   `json:"balls"`
	Shots            []Shot        `json:"shots"`
	ShotCount        int           `json:"shot_count"`
	OpenShot         *Shot         `json:"open_shot,omitempty"`
	FrameOver        bool          `json:"frame_over"`
	FrameOverReason  string        `json:"frame_over_reason,omitempty"`
	AimAngle         float64       `json:"aim_angle"`
	Power            float64       `json:"power"`
	PredictorEnabled bool          `json:"predictor_enabled"`
	Prediction       *Prediction   `json:"prediction,omitempty"`
	Geometry         TableGeometry `json:"geometry"`
}

func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:             s.tick,
		Phase:            s.phase,
		Layout:           s.layout,
		Shots:            s.log.Shots(),
		ShotCount:        s.shotCount,
		FrameOver:        s.phase == PhaseFrameOver,
		FrameOverReason:  s.frameReason,
		AimAngle:         s.aimAngle,
		Power:            s.power,
		PredictorEnabled: s.predictorOn,
		Geometry:         s.geom,
	}
	for _, b := range s.world.Balls() {
		snap.Balls = append(snap.Balls, BallState{
			ID:       b.ID,
			Kind:     b.Kind,
			Position: b.Position(),
			Velocity: b.Velocity(),
			Potted:   b.Potted,
		})
	}
	if s.shot != nil {
		open := *s.shot
		open.Potted = append([]PottedBall(nil), s.shot.Potted...)
		snap.OpenShot = &open
	}
	if s.prediction != nil {
		p := Prediction{Path: append([]Vec2(nil), s.prediction.Path...)}
		if s.prediction.Contact != nil {
			c := *s.prediction.Contact
			p.Contact = &c
		}
		snap.Prediction = &p
	}
	return snap
}
