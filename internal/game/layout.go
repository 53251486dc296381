package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
)

// LayoutMode selects how the reds are racked.
type LayoutMode int

const (
	LayoutStandard  LayoutMode = 1
	LayoutClustered LayoutMode = 2
	LayoutPractice  LayoutMode = 3
)

var ErrInvalidLayout = errors.New("unknown layout mode")

func (m LayoutMode) String() string {
	switch m {
	case LayoutStandard:
		return "standard"
	case LayoutClustered:
		return "clustered"
	case LayoutPractice:
		return "practice"
	}
	return fmt.Sprintf("layout(%d)", int(m))
}

// ParseLayoutMode validates a numeric layout selector.
func ParseLayoutMode(n int) (LayoutMode, error) {
	m := LayoutMode(n)
	switch m {
	case LayoutStandard, LayoutClustered, LayoutPractice:
		return m, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidLayout, n)
}

// Layout is a generated set of ball positions. Colours always sit on their
// spots; the cue ball is never part of a layout.
type Layout struct {
	Mode    LayoutMode
	Colours map[Colour]Vec2
	Reds    []Vec2
}

// LayoutGenerator places reds around the fixed colours, rejecting any spot
// that is off the surface or too close to a ball already placed.
type LayoutGenerator struct {
	geom     TableGeometry
	rng      *rand.Rand
	minSep   float64
	attempts int
	placed   []Vec2
}

// NewLayoutGenerator prepares a generator. overlapMultiplier is the minimum
// center distance in ball radii; attempts bounds clustered rejection sampling.
func NewLayoutGenerator(geom TableGeometry, rng *rand.Rand, overlapMultiplier float64, attempts int) *LayoutGenerator {
	return &LayoutGenerator{
		geom:     geom,
		rng:      rng,
		minSep:   overlapMultiplier * geom.BallRadius,
		attempts: attempts,
	}
}

// Generate builds a layout. cue, when non-nil, is treated as an obstacle.
func (g *LayoutGenerator) Generate(mode LayoutMode, cue *Vec2) (Layout, error) {
	if _, err := ParseLayoutMode(int(mode)); err != nil {
		return Layout{}, err
	}

	g.placed = g.placed[:0]
	if cue != nil {
		g.placed = append(g.placed, *cue)
	}

	l := Layout{Mode: mode, Colours: make(map[Colour]Vec2, len(Colours))}
	for _, c := range Colours {
		spot := g.geom.Spot(c)
		l.Colours[c] = spot
		g.placed = append(g.placed, spot)
	}

	switch mode {
	case LayoutStandard:
		l.Reds = g.standard()
	case LayoutClustered:
		l.Reds = g.clustered()
	case LayoutPractice:
		l.Reds = g.practice()
	}

	if len(l.Reds) < NumReds {
		log.Printf("[LAYOUT] %s layout placed %d of %d reds", mode, len(l.Reds), NumReds)
	}
	return l, nil
}

// Fits reports whether p is on the surface and clear of every placed ball.
func (g *LayoutGenerator) Fits(p Vec2) bool {
	return fitsAmong(g.geom, p, g.placed, g.minSep)
}

func fitsAmong(geom TableGeometry, p Vec2, placed []Vec2, minSep float64) bool {
	if !p.IsFinite() || !geom.InSurface(p, geom.BallRadius) {
		return false
	}
	for _, q := range placed {
		if p.DistanceTo(q) < minSep {
			return false
		}
	}
	return true
}

func (g *LayoutGenerator) accept(p Vec2, reds *[]Vec2) bool {
	if !g.Fits(p) {
		return false
	}
	g.placed = append(g.placed, p)
	*reds = append(*reds, p)
	return true
}

// standard racks a 5-row triangle with its apex just beyond the pink. The
// spacing keeps neighbours at least 2.1 radii apart.
func (g *LayoutGenerator) standard() []Vec2 {
	d := g.geom.BallDiameter
	pink := g.geom.Spot(Pink)
	apexX := pink.X + StandardApexGap*d

	reds := make([]Vec2, 0, NumReds)
	for row := 0; row < 5; row++ {
		x := apexX + float64(row)*StandardRowStep*d
		for col := 0; col <= row; col++ {
			y := pink.Y + (float64(col)-float64(row)/2)*StandardColStep*d
			g.accept(Vec2{X: x, Y: y}, &reds)
		}
	}
	return reds
}

// clustered scatters reds around three random centers biased toward the
// top end of the table.
func (g *LayoutGenerator) clustered() []Vec2 {
	s := g.geom.Surface
	d := g.geom.BallDiameter
	spread := ClusterSpread * d

	centers := make([]Vec2, ClusterCount)
	for i := range centers {
		centers[i] = Vec2{
			X: s.X + s.W*(0.45+0.45*g.rng.Float64()),
			Y: s.Y + s.H*(0.2+0.6*g.rng.Float64()),
		}
	}

	reds := make([]Vec2, 0, NumReds)
	for i := 0; i < NumReds; i++ {
		placed := false
		for attempt := 0; attempt < g.attempts; attempt++ {
			c := centers[g.rng.IntN(len(centers))]
			p := Vec2{
				X: c.X + (g.rng.Float64()*2-1)*spread,
				Y: c.Y + (g.rng.Float64()*2-1)*spread,
			}
			if g.accept(p, &reds) {
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		slot := g.fallbackSlot(i)
		if !g.accept(slot, &reds) {
			log.Printf("[LAYOUT] red %d omitted: %d attempts and fallback slot (%.1f, %.1f) rejected",
				i, g.attempts, slot.X, slot.Y)
		}
	}
	return reds
}

// fallbackSlot is a deterministic grid position behind the pink.
func (g *LayoutGenerator) fallbackSlot(i int) Vec2 {
	d := g.geom.BallDiameter
	pink := g.geom.Spot(Pink)
	row := i / 5
	col := i % 5
	return Vec2{
		X: pink.X + (1.5+float64(row)*FallbackGridStep)*d,
		Y: pink.Y + float64(col-2)*FallbackGridStep*d,
	}
}

// practice lays a 3x5 grid between the blue and pink; cells that do not fit
// are skipped.
func (g *LayoutGenerator) practice() []Vec2 {
	d := g.geom.BallDiameter
	step := PracticeGridStep * d
	blue, pink := g.geom.Spot(Blue), g.geom.Spot(Pink)
	center := Vec2{X: (blue.X + pink.X) / 2, Y: blue.Y}

	reds := make([]Vec2, 0, PracticeCols*PracticeRows)
	for col := 0; col < PracticeCols; col++ {
		for row := 0; row < PracticeRows; row++ {
			p := Vec2{
				X: center.X + (float64(col)-float64(PracticeCols-1)/2)*step,
				Y: center.Y + (float64(row)-float64(PracticeRows-1)/2)*step,
			}
			g.accept(p, &reds)
		}
	}
	return reds
}
