package game

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/playmatatu/snooker/internal/config"
)

// Colour names one of the six colour balls.
type Colour int

const (
	Yellow Colour = iota
	Green
	Brown
	Blue
	Pink
	Black
)

// Colours lists the colour balls in spotting order.
var Colours = [6]Colour{Yellow, Green, Brown, Blue, Pink, Black}

var colourNames = [...]string{"yellow", "green", "brown", "blue", "pink", "black"}

func (c Colour) String() string {
	if c < 0 || int(c) >= len(colourNames) {
		return fmt.Sprintf("colour(%d)", int(c))
	}
	return colourNames[c]
}

func (c Colour) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Colour) UnmarshalText(b []byte) error {
	for i, n := range colourNames {
		if n == string(b) {
			*c = Colour(i)
			return nil
		}
	}
	return fmt.Errorf("unknown colour %q", string(b))
}

type ballClass uint8

const (
	classCue ballClass = iota
	classRed
	classColour
)

// BallKind is Cue, Red or Colour(name). The fields are unexported so only
// the three constructors can build one.
type BallKind struct {
	class  ballClass
	colour Colour
}

func CueKind() BallKind            { return BallKind{class: classCue} }
func RedKind() BallKind            { return BallKind{class: classRed} }
func ColourKind(c Colour) BallKind { return BallKind{class: classColour, colour: c} }
func (k BallKind) IsCue() bool     { return k.class == classCue }
func (k BallKind) IsRed() bool     { return k.class == classRed }
func (k BallKind) IsColour() bool  { return k.class == classColour }
func (k BallKind) IsBlack() bool   { return k.class == classColour && k.colour == Black }

// Colour returns the colour name and true for colour balls.
func (k BallKind) Colour() (Colour, bool) {
	if k.class != classColour {
		return 0, false
	}
	return k.colour, true
}

func (k BallKind) String() string {
	switch k.class {
	case classCue:
		return "cue"
	case classRed:
		return "red"
	default:
		return k.colour.String()
	}
}

func (k BallKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BallKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "cue":
		*k = CueKind()
	case "red":
		*k = RedKind()
	default:
		var c Colour
		if err := c.UnmarshalText(b); err != nil {
			return fmt.Errorf("unknown ball kind %q", string(b))
		}
		*k = ColourKind(c)
	}
	return nil
}

// BallSpec is everything needed to spawn one ball body.
type BallSpec struct {
	Kind        BallKind
	Radius      float64
	Mass        float64
	Restitution float64
	Friction    float64
	Damping     float64 // fraction of speed lost per reference step
}

// NewBallSpec builds the spec for a kind on the given table. All balls share
// one radius and one mass.
func NewBallSpec(kind BallKind, geom TableGeometry, tuning config.Tuning) BallSpec {
	r := geom.BallRadius
	area := math.Pi * r * r
	return BallSpec{
		Kind:        kind,
		Radius:      r,
		Mass:        tuning.Physics.BallDensity * area / (RefStepMs * RefStepMs),
		Restitution: tuning.Physics.BallRestitution,
		Friction:    tuning.Physics.BallFriction,
		Damping:     tuning.Physics.RollingDamping,
	}
}

// Ball is a live or potted ball. While live, its position and velocity are
// owned by the engine body; once potted the last known values are frozen.
type Ball struct {
	ID     int
	Kind   BallKind
	Radius float64
	Potted bool

	body  *cp.Body
	shape *cp.Shape

	// position at the start of the current substep
	prevPos Vec2

	// frozen state after removal from the engine
	lastPos Vec2
}

func (b *Ball) Position() Vec2 {
	if b.body == nil {
		return b.lastPos
	}
	return fromCP(b.body.Position())
}

func (b *Ball) Velocity() Vec2 {
	if b.body == nil {
		return Vec2{}
	}
	return fromCP(b.body.Velocity())
}

// Live reports whether the ball is still on the table.
func (b *Ball) Live() bool {
	return !b.Potted && b.body != nil
}
