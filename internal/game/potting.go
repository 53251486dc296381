package game

// PotEvent records one ball captured by a pocket.
type PotEvent struct {
	BallID   int      `json:"ball_id"`
	Kind     BallKind `json:"kind"`
	Pocket   PocketID `json:"pocket"`
	Position Vec2     `json:"position"`
}

// PottingDetector finds live balls whose centers are strictly inside a
// pocket's capture radius, or passed through it during the last substep.
// Pockets are tested in PocketOrder and the first match wins.
type PottingDetector struct {
	pockets []Pocket
}

func NewPottingDetector(geom TableGeometry) *PottingDetector {
	return &PottingDetector{pockets: geom.Pockets}
}

// Capture returns the pocket that captures p, if any.
func (d *PottingDetector) Capture(p Vec2) (Pocket, bool) {
	return d.CaptureAlong(p, p)
}

// CaptureAlong returns the first pocket whose capture radius the segment
// from-to enters.
func (d *PottingDetector) CaptureAlong(from, to Vec2) (Pocket, bool) {
	for _, pk := range d.pockets {
		if segmentDistance(pk.Position, from, to) < pk.CaptureRadius {
			return pk, true
		}
	}
	return Pocket{}, false
}

// Scan removes every captured ball from the world and reports it. A ball is
// reported at most once since removed balls are no longer live.
func (d *PottingDetector) Scan(w *World) []PotEvent {
	var events []PotEvent
	for _, b := range w.Balls() {
		if !b.Live() {
			continue
		}
		pos := b.Position()
		pk, ok := d.CaptureAlong(b.prevPos, pos)
		if !ok {
			continue
		}
		w.RemoveBall(b)
		events = append(events, PotEvent{
			BallID:   b.ID,
			Kind:     b.Kind,
			Pocket:   pk.ID,
			Position: pos,
		})
	}
	return events
}
