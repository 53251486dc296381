package game

// EventType names what happened during a tick.
type EventType string

const (
	EventPlacement   EventType = "placement"
	EventShotFired   EventType = "shot_fired"
	EventPot         EventType = "pot"
	EventCuePotted   EventType = "cue_potted"
	EventShotSettled EventType = "shot_settled"
	EventFrameOver   EventType = "frame_over"
	EventAnomaly     EventType = "anomaly"
	EventLayoutReset EventType = "layout_reset"
	EventResized     EventType = "resized"
	EventRejected    EventType = "command_rejected"
)

// Event is emitted by Simulation operations. Only the fields relevant to the
// type are set.
type Event struct {
	Type   EventType `json:"type"`
	Tick   uint64    `json:"tick"`
	Shot   *Shot     `json:"shot,omitempty"`
	Pot    *PotEvent `json:"pot,omitempty"`
	BallID int       `json:"ball_id,omitempty"`
	Point  *Vec2     `json:"point,omitempty"`
	Reason string    `json:"reason,omitempty"`
}
