package game

import "math"

// Rect is an axis-aligned rectangle; (X, Y) is the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Bottom() float64 { return r.Y + r.H }

func (r Rect) Center() Vec2 {
	return Vec2{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Inset shrinks the rectangle by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Size is the drawable area hosting the table. A zero size means "unbounded".
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// PocketID names one of the six pockets.
type PocketID string

const (
	PocketTL PocketID = "TL"
	PocketTM PocketID = "TM"
	PocketTR PocketID = "TR"
	PocketBL PocketID = "BL"
	PocketBM PocketID = "BM"
	PocketBR PocketID = "BR"
)

// PocketOrder is the fixed order in which pockets are tested for captures.
var PocketOrder = [6]PocketID{PocketTL, PocketTM, PocketTR, PocketBL, PocketBM, PocketBR}

// Pocket is a capture zone. CaptureRadius is a detection radius, not a hole.
type Pocket struct {
	ID            PocketID `json:"id"`
	Position      Vec2     `json:"position"`
	Radius        float64  `json:"radius"`
	CaptureRadius float64  `json:"capture_radius"`
}

// Cushion is a static rail segment lying just outside the playing surface.
// Normal points from the cushion into the surface.
type Cushion struct {
	Name   string `json:"name"`
	Rect   Rect   `json:"rect"`
	Normal Vec2   `json:"normal"`
}

// TableGeometry holds every derived dimension of the table. It is a value:
// recomputing produces a whole new geometry, never a partial update.
type TableGeometry struct {
	TableLength  float64         `json:"table_length"`
	Canvas       Size            `json:"canvas"`
	Outer        Rect            `json:"outer"`
	Rail         float64         `json:"rail"`
	Surface      Rect            `json:"surface"`
	BallDiameter float64         `json:"ball_diameter"`
	BallRadius   float64         `json:"ball_radius"`
	PocketRadius float64         `json:"pocket_radius"`
	BaulkX       float64         `json:"baulk_x"`
	DCenter      Vec2            `json:"d_center"`
	DRadius      float64         `json:"d_radius"`
	Spots        map[Colour]Vec2 `json:"spots"`
	Pockets      []Pocket        `json:"pockets"`
	Cushions     []Cushion       `json:"cushions"`
}

// railPerLength is the rail thickness as a fraction of surface length.
const railPerLength = RailToBall * SurfaceAspect / BallsPerWidth

// ComputeGeometry derives the whole table from the playing-surface length.
// When canvas is non-zero the table is shrunk to fit and centered in it.
// Lengths below MinTableLength are raised to it so no dimension degenerates.
func ComputeGeometry(tableLength float64, canvas Size, captureMultiplier float64) TableGeometry {
	length := tableLength
	if math.IsNaN(length) || math.IsInf(length, 0) {
		length = MinTableLength
	}
	if canvas.W > 0 && canvas.H > 0 {
		maxByW := canvas.W / (1 + 2*railPerLength)
		maxByH := canvas.H / (SurfaceAspect + 2*railPerLength)
		length = math.Min(length, math.Min(maxByW, maxByH))
	}
	if length < MinTableLength {
		length = MinTableLength
	}

	width := length * SurfaceAspect
	ball := width / BallsPerWidth
	rail := RailToBall * ball

	outer := Rect{W: length + 2*rail, H: width + 2*rail}
	if canvas.W > 0 && canvas.H > 0 {
		outer.X = math.Max(0, (canvas.W-outer.W)/2)
		outer.Y = math.Max(0, (canvas.H-outer.H)/2)
	}
	surface := outer.Inset(rail)

	g := TableGeometry{
		TableLength:  length,
		Canvas:       canvas,
		Outer:        outer,
		Rail:         rail,
		Surface:      surface,
		BallDiameter: ball,
		BallRadius:   ball / 2,
		PocketRadius: PocketToBall * ball,
	}

	cy := surface.Y + surface.H/2
	g.BaulkX = surface.X + BaulkFraction*surface.W
	g.DRadius = DRadiusFraction * surface.H
	g.DCenter = Vec2{X: g.BaulkX, Y: cy}

	g.Spots = map[Colour]Vec2{
		Yellow: {X: g.BaulkX, Y: cy + g.DRadius},
		Green:  {X: g.BaulkX, Y: cy - g.DRadius},
		Brown:  {X: g.BaulkX, Y: cy},
		Blue:   {X: surface.X + BlueFraction*surface.W, Y: cy},
		Pink:   {X: surface.X + PinkFraction*surface.W, Y: cy},
		Black:  {X: surface.X + BlackFraction*surface.W, Y: cy},
	}

	g.Pockets = buildPockets(surface, g.BallRadius, g.PocketRadius, captureMultiplier)
	g.Cushions = buildCushions(surface, rail, g.PocketRadius)
	return g
}

func buildPockets(s Rect, ballRadius, pocketRadius, captureMultiplier float64) []Pocket {
	in := CornerPocketInset * ballRadius
	midX := s.X + s.W/2
	pos := map[PocketID]Vec2{
		PocketTL: {X: s.X + in, Y: s.Y + in},
		PocketTM: {X: midX, Y: s.Y},
		PocketTR: {X: s.Right() - in, Y: s.Y + in},
		PocketBL: {X: s.X + in, Y: s.Bottom() - in},
		PocketBM: {X: midX, Y: s.Bottom()},
		PocketBR: {X: s.Right() - in, Y: s.Bottom() - in},
	}

	pockets := make([]Pocket, 0, len(PocketOrder))
	for _, id := range PocketOrder {
		pockets = append(pockets, Pocket{
			ID:            id,
			Position:      pos[id],
			Radius:        pocketRadius,
			CaptureRadius: captureMultiplier * pocketRadius,
		})
	}
	return pockets
}

// buildCushions lays six rails around the surface: each long side is split
// around the middle pocket and every rail stops short of the corner pockets.
func buildCushions(s Rect, rail, gap float64) []Cushion {
	midX := s.X + s.W/2
	halfRun := midX - gap - (s.X + gap)
	sideRun := s.H - 2*gap

	return []Cushion{
		{Name: "top-left", Rect: Rect{X: s.X + gap, Y: s.Y - rail, W: halfRun, H: rail}, Normal: Vec2{X: 0, Y: 1}},
		{Name: "top-right", Rect: Rect{X: midX + gap, Y: s.Y - rail, W: halfRun, H: rail}, Normal: Vec2{X: 0, Y: 1}},
		{Name: "bottom-left", Rect: Rect{X: s.X + gap, Y: s.Bottom(), W: halfRun, H: rail}, Normal: Vec2{X: 0, Y: -1}},
		{Name: "bottom-right", Rect: Rect{X: midX + gap, Y: s.Bottom(), W: halfRun, H: rail}, Normal: Vec2{X: 0, Y: -1}},
		{Name: "left", Rect: Rect{X: s.X - rail, Y: s.Y + gap, W: rail, H: sideRun}, Normal: Vec2{X: 1, Y: 0}},
		{Name: "right", Rect: Rect{X: s.Right(), Y: s.Y + gap, W: rail, H: sideRun}, Normal: Vec2{X: -1, Y: 0}},
	}
}

// InSurface reports whether p lies on the playing surface shrunk by inset.
func (g TableGeometry) InSurface(p Vec2, inset float64) bool {
	return g.Surface.Inset(inset).Contains(p)
}

// ClampToSurface moves p to the nearest point of the surface shrunk by inset.
func (g TableGeometry) ClampToSurface(p Vec2, inset float64) Vec2 {
	r := g.Surface.Inset(inset)
	return Vec2{
		X: math.Min(math.Max(p.X, r.X), r.Right()),
		Y: math.Min(math.Max(p.Y, r.Y), r.Bottom()),
	}
}

// PointInD reports whether p is a legal cue-ball spot: on the surface (inset
// by a ball radius), not past the baulk line and inside the D radius.
func (g TableGeometry) PointInD(p Vec2) bool {
	if !p.IsFinite() {
		return false
	}
	if !g.InSurface(p, g.BallRadius) {
		return false
	}
	if p.X > g.BaulkX {
		return false
	}
	return p.DistanceTo(g.DCenter) <= g.DRadius
}

// Spot returns the spot of a colour.
func (g TableGeometry) Spot(c Colour) Vec2 {
	return g.Spots[c]
}

// Pocket returns the pocket with the given id.
func (g TableGeometry) Pocket(id PocketID) (Pocket, bool) {
	for _, p := range g.Pockets {
		if p.ID == id {
			return p, true
		}
	}
	return Pocket{}, false
}
