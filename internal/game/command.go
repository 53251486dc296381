package game

import "fmt"

// CommandType is the wire name of a player command.
type CommandType string

const (
	CmdPlaceCueBall    CommandType = "place_cue_ball"
	CmdSetAim          CommandType = "set_aim"
	CmdSetPower        CommandType = "set_power"
	CmdFire            CommandType = "fire"
	CmdResetLayout     CommandType = "reset_layout"
	CmdTogglePredictor CommandType = "toggle_predictor"
	CmdResize          CommandType = "resize"
)

// Valid reports whether t names a known command.
func (t CommandType) Valid() bool {
	switch t {
	case CmdPlaceCueBall, CmdSetAim, CmdSetPower, CmdFire,
		CmdResetLayout, CmdTogglePredictor, CmdResize:
		return true
	}
	return false
}

// Command is a player instruction queued for the next tick. Only the fields
// used by Type are read.
type Command struct {
	Type   CommandType `json:"type"`
	X      float64     `json:"x,omitempty"`
	Y      float64     `json:"y,omitempty"`
	Angle  float64     `json:"angle,omitempty"`
	Value  float64     `json:"value,omitempty"`
	Mode   int         `json:"mode,omitempty"`
	Width  float64     `json:"width,omitempty"`
	Height float64     `json:"height,omitempty"`
}

// Apply runs the command against s.
func (c Command) Apply(s *Simulation) error {
	switch c.Type {
	case CmdPlaceCueBall:
		return s.PlaceCueBall(Vec2{X: c.X, Y: c.Y})
	case CmdSetAim:
		return s.SetAimAngle(c.Angle)
	case CmdSetPower:
		return s.SetPower(c.Value)
	case CmdFire:
		return s.FireShot()
	case CmdResetLayout:
		return s.ResetLayout(c.Mode)
	case CmdTogglePredictor:
		s.TogglePredictor()
		return nil
	case CmdResize:
		return s.Resize(Size{W: c.Width, H: c.Height})
	default:
		return fmt.Errorf("unknown command %q", c.Type)
	}
}
