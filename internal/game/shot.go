package game

// Outcome classifies a settled shot.
type Outcome string

const (
	OutcomeMiss   Outcome = "MISS"
	OutcomePotted Outcome = "POTTED"
	OutcomeFoul   Outcome = "FOUL"
)

// PottedBall summarises one ball that fell during a shot.
type PottedBall struct {
	BallID int      `json:"ball_id"`
	Kind   BallKind `json:"kind"`
	Pocket PocketID `json:"pocket"`
}

// Shot is one stroke. It is mutable only while open; once settled the
// simulation copies it into the log and never touches it again.
type Shot struct {
	Index      int          `json:"index"`
	AimAngle   float64      `json:"aim_angle"`
	Power      float64      `json:"power"`
	Impulse    float64      `json:"impulse"`
	Outcome    Outcome      `json:"outcome,omitempty"`
	Potted     []PottedBall `json:"potted"`
	CuePotted  bool         `json:"cue_potted"`
	FiredTick  uint64       `json:"fired_tick"`
	SettleTick uint64       `json:"settle_tick,omitempty"`
}

// classify picks exactly one outcome; a cue-ball pot overrides everything.
func (s *Shot) classify() Outcome {
	switch {
	case s.CuePotted:
		return OutcomeFoul
	case len(s.Potted) > 0:
		return OutcomePotted
	default:
		return OutcomeMiss
	}
}

func (s *Shot) record(ev PotEvent) {
	if ev.Kind.IsCue() {
		s.CuePotted = true
		return
	}
	s.Potted = append(s.Potted, PottedBall{BallID: ev.BallID, Kind: ev.Kind, Pocket: ev.Pocket})
}

// ShotLog is a fixed-capacity FIFO of settled shots.
type ShotLog struct {
	cap   int
	shots []Shot
}

func NewShotLog(capacity int) *ShotLog {
	if capacity < 1 {
		capacity = 1
	}
	return &ShotLog{cap: capacity, shots: make([]Shot, 0, capacity)}
}

// Append adds a shot, evicting the oldest when full.
func (l *ShotLog) Append(s Shot) {
	if len(l.shots) == l.cap {
		copy(l.shots, l.shots[1:])
		l.shots = l.shots[:l.cap-1]
	}
	l.shots = append(l.shots, s)
}

func (l *ShotLog) Len() int { return len(l.shots) }
func (l *ShotLog) Cap() int { return l.cap }

// Shots returns a copy, oldest first.
func (l *ShotLog) Shots() []Shot {
	out := make([]Shot, len(l.shots))
	copy(out, l.shots)
	return out
}

// Last returns the most recent shot.
func (l *ShotLog) Last() (Shot, bool) {
	if len(l.shots) == 0 {
		return Shot{}, false
	}
	return l.shots[len(l.shots)-1], true
}
