package game

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/playmatatu/snooker/internal/config"
)

func newGenerator(seed uint64) (*LayoutGenerator, TableGeometry) {
	tuning := config.DefaultTuning()
	g := ComputeGeometry(900, Size{}, tuning.Pockets.CaptureMultiplier)
	rng := rand.New(rand.NewPCG(seed, seed+1))
	return NewLayoutGenerator(g, rng, tuning.Layout.OverlapMultiplier, tuning.Layout.ClusterAttempts), g
}

// checkSeparation fails if any two balls are closer than 2.05 radii or any
// ball is off the radius-inset surface.
func checkSeparation(t *testing.T, g TableGeometry, l Layout, cue *Vec2) {
	t.Helper()
	all := append([]Vec2{}, l.Reds...)
	for _, c := range Colours {
		all = append(all, l.Colours[c])
	}
	if cue != nil {
		all = append(all, *cue)
	}
	minSep := 2.05 * g.BallRadius
	for i := range all {
		if !g.InSurface(all[i], g.BallRadius) {
			t.Errorf("%s: ball %d at (%.2f, %.2f) off surface", l.Mode, i, all[i].X, all[i].Y)
		}
		for j := i + 1; j < len(all); j++ {
			if d := all[i].DistanceTo(all[j]); d < minSep-1e-9 {
				t.Errorf("%s: balls %d and %d are %.3f apart, min %.3f", l.Mode, i, j, d, minSep)
			}
		}
	}
}

func TestStandardLayout(t *testing.T) {
	gen, g := newGenerator(1)
	l, err := gen.Generate(LayoutStandard, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Reds) != NumReds {
		t.Fatalf("standard layout has %d reds, want %d", len(l.Reds), NumReds)
	}
	if len(l.Colours) != 6 {
		t.Fatalf("standard layout has %d colours", len(l.Colours))
	}
	for _, c := range Colours {
		if l.Colours[c] != g.Spot(c) {
			t.Errorf("%s not on its spot", c)
		}
	}
	pink := g.Spot(Pink)
	for i, r := range l.Reds {
		if r.X <= pink.X {
			t.Errorf("red %d at x=%.2f is not beyond the pink", i, r.X)
		}
	}
	checkSeparation(t, g, l, nil)
}

func TestStandardLayoutIsDeterministic(t *testing.T) {
	a, _ := newGenerator(1)
	b, _ := newGenerator(99)
	la, _ := a.Generate(LayoutStandard, nil)
	lb, _ := b.Generate(LayoutStandard, nil)
	for i := range la.Reds {
		if la.Reds[i] != lb.Reds[i] {
			t.Fatalf("red %d differs between seeds", i)
		}
	}
}

func TestClusteredLayoutSeparation(t *testing.T) {
	for seed := uint64(0); seed < 25; seed++ {
		gen, g := newGenerator(seed)
		l, err := gen.Generate(LayoutClustered, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(l.Reds) > NumReds {
			t.Errorf("seed %d: %d reds", seed, len(l.Reds))
		}
		checkSeparation(t, g, l, nil)
	}
}

func TestClusteredLayoutAvoidsCue(t *testing.T) {
	gen, g := newGenerator(7)
	cue := g.Spot(Pink).Plus(Vec2{X: 2 * g.BallDiameter})
	l, _ := gen.Generate(LayoutClustered, &cue)
	checkSeparation(t, g, l, &cue)
}

func TestClusteredLayoutSeedReproducible(t *testing.T) {
	a, _ := newGenerator(42)
	b, _ := newGenerator(42)
	la, _ := a.Generate(LayoutClustered, nil)
	lb, _ := b.Generate(LayoutClustered, nil)
	if len(la.Reds) != len(lb.Reds) {
		t.Fatalf("same seed produced %d and %d reds", len(la.Reds), len(lb.Reds))
	}
	for i := range la.Reds {
		if la.Reds[i] != lb.Reds[i] {
			t.Fatalf("red %d differs for the same seed", i)
		}
	}
}

func TestPracticeLayout(t *testing.T) {
	gen, g := newGenerator(3)
	l, err := gen.Generate(LayoutPractice, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Reds) != PracticeCols*PracticeRows {
		t.Errorf("practice layout has %d reds, want %d", len(l.Reds), PracticeCols*PracticeRows)
	}
	blue, pink := g.Spot(Blue), g.Spot(Pink)
	for i, r := range l.Reds {
		if r.X <= blue.X || r.X >= pink.X {
			t.Errorf("red %d at x=%.2f outside the blue-pink band", i, r.X)
		}
	}
	checkSeparation(t, g, l, nil)
}

func TestPracticeLayoutSkipsBlockedCells(t *testing.T) {
	gen, g := newGenerator(3)
	// the grid center cell sits here
	center := Vec2{X: (g.Spot(Blue).X + g.Spot(Pink).X) / 2, Y: g.Spot(Blue).Y}
	l, _ := gen.Generate(LayoutPractice, &center)
	if len(l.Reds) != PracticeCols*PracticeRows-1 {
		t.Errorf("got %d reds with the center cell blocked, want %d", len(l.Reds), PracticeCols*PracticeRows-1)
	}
	checkSeparation(t, g, l, &center)
}

func TestInvalidLayoutMode(t *testing.T) {
	gen, _ := newGenerator(1)
	for _, m := range []LayoutMode{0, 4, -1} {
		if _, err := gen.Generate(m, nil); !errors.Is(err, ErrInvalidLayout) {
			t.Errorf("mode %d: err = %v, want ErrInvalidLayout", m, err)
		}
	}
	if _, err := ParseLayoutMode(2); err != nil {
		t.Errorf("ParseLayoutMode(2): %v", err)
	}
}

func TestClusteredFallsBackToGridSlots(t *testing.T) {
	tuning := config.DefaultTuning()
	g := ComputeGeometry(900, Size{}, tuning.Pockets.CaptureMultiplier)
	// no sampling attempts: every red goes straight to its fallback slot
	gen := NewLayoutGenerator(g, rand.New(rand.NewPCG(3, 4)), tuning.Layout.OverlapMultiplier, 0)

	l, err := gen.Generate(LayoutClustered, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Reds) != NumReds {
		t.Fatalf("placed %d reds, want %d", len(l.Reds), NumReds)
	}
	for i, p := range l.Reds {
		if want := gen.fallbackSlot(i); p != want {
			t.Errorf("red %d at (%.2f, %.2f), want fallback slot (%.2f, %.2f)", i, p.X, p.Y, want.X, want.Y)
		}
	}
	checkSeparation(t, g, l, nil)
}

func TestClusteredOmitsRedWhenFallbackBlocked(t *testing.T) {
	tuning := config.DefaultTuning()
	g := ComputeGeometry(900, Size{}, tuning.Pockets.CaptureMultiplier)
	gen := NewLayoutGenerator(g, rand.New(rand.NewPCG(3, 4)), tuning.Layout.OverlapMultiplier, 0)

	cue := gen.fallbackSlot(0)
	l, err := gen.Generate(LayoutClustered, &cue)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Reds) != NumReds-1 {
		t.Fatalf("placed %d reds, want %d with slot 0 blocked", len(l.Reds), NumReds-1)
	}
	for i, p := range l.Reds {
		if want := gen.fallbackSlot(i + 1); p != want {
			t.Errorf("red %d at (%.2f, %.2f), want slot %d (%.2f, %.2f)", i, p.X, p.Y, i+1, want.X, want.Y)
		}
	}
	checkSeparation(t, g, l, &cue)
}

func TestClusteredSingleAttemptKeepsSeparation(t *testing.T) {
	tuning := config.DefaultTuning()
	g := ComputeGeometry(900, Size{}, tuning.Pockets.CaptureMultiplier)
	for seed := uint64(1); seed <= 20; seed++ {
		gen := NewLayoutGenerator(g, rand.New(rand.NewPCG(seed, seed+1)), tuning.Layout.OverlapMultiplier, 1)
		cue := Vec2{X: g.DCenter.X - 56, Y: g.DCenter.Y + 45}
		l, err := gen.Generate(LayoutClustered, &cue)
		if err != nil {
			t.Fatal(err)
		}
		if len(l.Reds) == 0 || len(l.Reds) > NumReds {
			t.Errorf("seed %d: %d reds", seed, len(l.Reds))
		}
		checkSeparation(t, g, l, &cue)
	}
}
