package game

import "math"

// rayRectExit finds where a ray starting inside r leaves it. The returned
// normal is the outward normal of the edge that was hit.
func rayRectExit(o, d Vec2, r Rect) (t float64, n Vec2, ok bool) {
	t = math.Inf(1)
	try := func(tc float64, nc Vec2) {
		if tc > rayEpsilon && tc < t {
			t, n, ok = tc, nc, true
		}
	}
	if d.X > 0 {
		try((r.Right()-o.X)/d.X, Vec2{X: 1})
	} else if d.X < 0 {
		try((r.X-o.X)/d.X, Vec2{X: -1})
	}
	if d.Y > 0 {
		try((r.Bottom()-o.Y)/d.Y, Vec2{Y: 1})
	} else if d.Y < 0 {
		try((r.Y-o.Y)/d.Y, Vec2{Y: -1})
	}
	return t, n, ok
}

// rayCircle solves |o + t*d - c|^2 = radius^2 for a unit direction d and
// returns the smallest root above rayEpsilon.
func rayCircle(o, d, c Vec2, radius float64) (float64, bool) {
	f := o.Minus(c)
	b := f.Dot(d)
	cc := f.Dot(f) - radius*radius
	disc := b*b - cc
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	for _, t := range [2]float64{-b - sq, -b + sq} {
		if t > rayEpsilon {
			return t, true
		}
	}
	return 0, false
}

// segmentDistance is the distance from p to the closest point of segment a-b.
func segmentDistance(p, a, b Vec2) float64 {
	ab := b.Minus(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.DistanceTo(a)
	}
	t := math.Max(0, math.Min(1, p.Minus(a).Dot(ab)/l2))
	return p.DistanceTo(a.Plus(ab.Times(t)))
}
