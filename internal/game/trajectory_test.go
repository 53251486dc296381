package game

import (
	"math"
	"testing"
)

func near(a, b Vec2) bool {
	return a.DistanceTo(b) < 1e-6
}

func testInput(origin, dir Vec2, bounces int, balls ...PredictorBall) PredictorInput {
	return PredictorInput{
		Surface:    Rect{X: 0, Y: 0, W: 100, H: 50},
		BallRadius: 1,
		Origin:     origin,
		Direction:  dir,
		Balls:      balls,
		MaxBounces: bounces,
	}
}

func TestReflectionFlipsNormalKeepsTangent(t *testing.T) {
	normals := []Vec2{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, NewVec2(1, 1).Normalize()}
	dirs := []Vec2{NewVec2(1, 0.3).Normalize(), NewVec2(-0.2, 1).Normalize(), NewVec2(0.7, -0.7), {X: 1}}
	for _, n := range normals {
		for _, d := range dirs {
			r := d.Reflect(n)
			if math.Abs(r.Dot(n)+d.Dot(n)) > 1e-12 {
				t.Errorf("d=%v n=%v: normal component %.6f, want %.6f", d, n, r.Dot(n), -d.Dot(n))
			}
			tanD := d.Minus(n.Times(d.Dot(n)))
			tanR := r.Minus(n.Times(r.Dot(n)))
			if !near(tanD, tanR) {
				t.Errorf("d=%v n=%v: tangent changed from %v to %v", d, n, tanD, tanR)
			}
		}
	}
}

func TestPredictStraightToWall(t *testing.T) {
	p := Predict(testInput(Vec2{X: 50, Y: 25}, Vec2{X: 1}, 1))
	if len(p.Path) != 2 {
		t.Fatalf("path %v, want 2 vertices", p.Path)
	}
	if !near(p.Path[1], Vec2{X: 99, Y: 25}) {
		t.Errorf("wall contact %v, want (99, 25)", p.Path[1])
	}
	if p.Contact != nil {
		t.Errorf("unexpected contact %+v", p.Contact)
	}
}

func TestPredictBounces(t *testing.T) {
	p := Predict(testInput(Vec2{X: 50, Y: 25}, Vec2{X: 1, Y: 1}, 2))
	if len(p.Path) != 3 {
		t.Fatalf("path %v, want 3 vertices", p.Path)
	}
	if !near(p.Path[1], Vec2{X: 74, Y: 49}) {
		t.Errorf("first bounce at %v, want (74, 49)", p.Path[1])
	}
	// reflected off the bottom edge, heading up and right
	if math.Abs(p.Path[2].X-99) > 1e-6 || math.Abs(p.Path[2].Y-24) > 1e-2 {
		t.Errorf("second bounce at %v, want about (99, 24)", p.Path[2])
	}
}

func TestPredictBounded(t *testing.T) {
	for bounces := 1; bounces <= 5; bounces++ {
		p := Predict(testInput(Vec2{X: 10, Y: 10}, Vec2{X: 1, Y: 0.37}, bounces))
		if len(p.Path) > bounces+1 {
			t.Errorf("maxBounces=%d produced %d vertices", bounces, len(p.Path))
		}
	}
}

func TestPredictStopsAtBall(t *testing.T) {
	p := Predict(testInput(Vec2{X: 50, Y: 25}, Vec2{X: 1}, 3,
		PredictorBall{ID: 7, Position: Vec2{X: 80, Y: 25}, Radius: 1},
		PredictorBall{ID: 8, Position: Vec2{X: 90, Y: 25}, Radius: 1},
	))
	if p.Contact == nil {
		t.Fatal("no contact")
	}
	if p.Contact.BallID != 7 {
		t.Errorf("contact with %d, want the nearer ball 7", p.Contact.BallID)
	}
	if !near(p.Contact.Point, Vec2{X: 78, Y: 25}) {
		t.Errorf("contact point %v, want (78, 25)", p.Contact.Point)
	}
	if len(p.Path) != 2 || !near(p.Path[1], p.Contact.Point) {
		t.Errorf("path %v should end at the contact", p.Path)
	}
}

func TestPredictHitsBallAfterBounce(t *testing.T) {
	p := Predict(testInput(Vec2{X: 50, Y: 25}, Vec2{X: 1}, 3,
		PredictorBall{ID: 3, Position: Vec2{X: 20, Y: 25}, Radius: 1},
	))
	if p.Contact == nil || p.Contact.BallID != 3 {
		t.Fatalf("contact %+v, want ball 3 after the rebound", p.Contact)
	}
	if len(p.Path) != 3 {
		t.Errorf("path %v, want origin, wall, contact", p.Path)
	}
	if !near(p.Contact.Point, Vec2{X: 22, Y: 25}) {
		t.Errorf("contact %v, want (22, 25)", p.Contact.Point)
	}
}

func TestPredictIgnoresBallsBehind(t *testing.T) {
	p := Predict(testInput(Vec2{X: 50, Y: 25}, Vec2{X: 1}, 1,
		PredictorBall{ID: 1, Position: Vec2{X: 30, Y: 25}, Radius: 1},
	))
	if p.Contact != nil {
		t.Errorf("hit a ball behind the origin: %+v", p.Contact)
	}
}

func TestPredictClampsOrigin(t *testing.T) {
	p := Predict(testInput(Vec2{X: -10, Y: 25}, Vec2{X: 1}, 1))
	if !near(p.Path[0], Vec2{X: 1, Y: 25}) {
		t.Errorf("origin %v, want clamped to (1, 25)", p.Path[0])
	}
}

func TestPredictZeroDirection(t *testing.T) {
	p := Predict(testInput(Vec2{X: 50, Y: 25}, Vec2{}, 3))
	if len(p.Path) != 1 || p.Contact != nil {
		t.Errorf("zero direction produced %+v", p)
	}
}
