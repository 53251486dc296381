package game

// Table ratios and engine cadence for the snooker practice table.
// Every linear dimension is a fixed ratio of the playing-surface length, so a
// table of any size stays internally consistent.

const (
	SurfaceAspect      = 0.5   // surface width / surface length
	BallsPerWidth      = 36.0  // surface width / ball diameter
	PocketToBall       = 1.5   // pocket radius / ball diameter
	RailToBall         = 1.6   // rail thickness / ball diameter
	BaulkFraction      = 0.207 // baulk line offset / surface length
	DRadiusFraction    = 0.165 // D radius / surface width
	BlueFraction       = 0.5
	PinkFraction       = 0.75
	BlackFraction      = 0.91
	CornerPocketInset  = 0.5 // corner pocket inset, in ball radii along each axis
	MinTableLength     = 180.0
	NumReds            = 15
	CushionBackingBall = 6.0 // extra cushion body depth behind the rail, in ball diameters

	// RefStepMs is the engine's unit of time: one 60 Hz frame.
	RefStepMs = 1000.0 / 60.0
	// MaxFrameMs bounds how much wall-clock time a single tick may catch up.
	MaxFrameMs = 1000.0 / 30.0
)

const (
	StandardApexGap  = 1.1  // apex distance beyond pink, in ball diameters
	StandardRowStep  = 0.98 // in ball diameters
	StandardColStep  = 1.05 // in ball diameters
	ClusterCount     = 3
	ClusterSpread    = 3.5 // in ball diameters
	PracticeGridStep = 2.2 // in ball diameters
	PracticeCols     = 3
	PracticeRows     = 5
	FallbackGridStep = 2.2 // in ball diameters
)

// predictor numerics
const (
	rayEpsilon     = 1e-6
	bounceAdvance  = 1e-3
	rayMaxDistance = 1e9
)
