package game

import "math"

// PredictorBall is an obstacle the aim line may strike.
type PredictorBall struct {
	ID       int
	Position Vec2
	Radius   float64
}

// PredictorInput is everything the predictor reads. It holds copies, so the
// predictor can never mutate the simulation.
type PredictorInput struct {
	Surface    Rect
	BallRadius float64
	Origin     Vec2
	Direction  Vec2
	Balls      []PredictorBall
	MaxBounces int
}

// Contact is the first object ball the aim line reaches.
type Contact struct {
	BallID int  `json:"ball_id"`
	Point  Vec2 `json:"point"`
}

// Prediction is the preview polyline and its optional terminal contact.
type Prediction struct {
	Path    []Vec2   `json:"path"`
	Contact *Contact `json:"contact,omitempty"`
}

// Predict traces the cue ball's center along the aim line, reflecting off
// the cushion line up to MaxBounces times and stopping at the first ball.
func Predict(in PredictorInput) Prediction {
	bounds := in.Surface.Inset(in.BallRadius)
	o := Vec2{
		X: math.Min(math.Max(in.Origin.X, bounds.X), bounds.Right()),
		Y: math.Min(math.Max(in.Origin.Y, bounds.Y), bounds.Bottom()),
	}
	d := in.Direction.Normalize()

	pred := Prediction{Path: []Vec2{o}}
	if d.IsZero() || !d.IsFinite() || !o.IsFinite() {
		return pred
	}

	for i := 0; i < in.MaxBounces; i++ {
		wallT, normal, wallHit := rayRectExit(o, d, bounds)

		ballT := math.Inf(1)
		ballID := -1
		for _, b := range in.Balls {
			if t, ok := rayCircle(o, d, b.Position, in.BallRadius+b.Radius); ok && t < ballT {
				ballT, ballID = t, b.ID
			}
		}

		if ballID >= 0 && (!wallHit || ballT < wallT) {
			p := o.Plus(d.Times(ballT))
			pred.Path = append(pred.Path, p)
			pred.Contact = &Contact{BallID: ballID, Point: p}
			return pred
		}
		if !wallHit || wallT > rayMaxDistance {
			return pred
		}

		hit := o.Plus(d.Times(wallT))
		pred.Path = append(pred.Path, hit)
		d = d.Reflect(normal)
		o = hit.Plus(d.Times(bounceAdvance))
	}
	return pred
}
