package game

// Phase is the position of the simulation in the shot lifecycle.
type Phase string

const (
	PhaseNoCueBall Phase = "NO_CUE_BALL"
	PhaseReady     Phase = "READY"
	PhaseInFlight  Phase = "IN_FLIGHT"
	PhaseFrameOver Phase = "FRAME_OVER"
)

// Aiming reports whether aim and power may change.
func (p Phase) Aiming() bool {
	return p == PhaseReady
}
