package game

import (
	"context"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playmatatu/snooker/internal/config"
	"github.com/redis/go-redis/v9"
)

// SessionOptions overrides the configured table for one session. Zero
// values fall back to the config defaults.
type SessionOptions struct {
	TableLength  float64 `json:"table_length"`
	CanvasWidth  float64 `json:"canvas_width"`
	CanvasHeight float64 `json:"canvas_height"`
	Layout       int     `json:"layout"`
	Seed         *uint64 `json:"seed,omitempty"`
}

// PracticeManager owns every live practice session.
type PracticeManager struct {
	sessions  map[string]*PracticeSession
	cache     *snapshotCache // nil without redis
	stopCache context.CancelFunc
	sink      EventSink
	journal   ShotJournal
	config    *config.Config
	mu        sync.RWMutex
}

// NewPracticeManager creates a manager. rdb, sink and journal may be nil.
// With rdb set, the latest snapshot of each session is cached in redis by a
// writer goroutine that lives until Shutdown.
func NewPracticeManager(cfg *config.Config, rdb *redis.Client, sink EventSink, journal ShotJournal) *PracticeManager {
	pm := &PracticeManager{
		sessions: make(map[string]*PracticeSession),
		sink:     sink,
		journal:  journal,
		config:   cfg,
	}
	if rdb != nil {
		ttl := time.Duration(cfg.SessionTimeoutMin) * time.Minute
		if ttl <= 0 {
			ttl = time.Hour
		}
		pm.startCache(newSnapshotCache(redisCacheWriter(rdb), ttl))
	}
	return pm
}

func (pm *PracticeManager) startCache(c *snapshotCache) {
	ctx, cancel := context.WithCancel(context.Background())
	pm.cache = c
	pm.stopCache = cancel
	go c.run(ctx)
}

// CreateSession builds a simulation and starts its tick loop.
func (pm *PracticeManager) CreateSession(opts SessionOptions) (*PracticeSession, error) {
	simOpts, err := pm.simulationOptions(opts)
	if err != nil {
		return nil, err
	}
	sim, err := NewSimulation(simOpts)
	if err != nil {
		return nil, err
	}
	length := sim.Geometry().TableLength

	pm.mu.Lock()
	if pm.config.MaxSessions > 0 && len(pm.sessions) >= pm.config.MaxSessions {
		pm.mu.Unlock()
		return nil, ErrTooManySessions
	}
	ctx, cancel := context.WithCancel(context.Background())
	ps := newPracticeSession(uuid.NewString(), sim)
	ps.cancel = cancel
	pm.sessions[ps.ID] = ps
	go pm.run(ctx, ps)
	pm.mu.Unlock()

	log.Printf("[PRACTICE] Session %s created (layout=%s seed=%d length=%.0f)",
		ps.ID, simOpts.Layout, simOpts.Seed, length)
	return ps, nil
}

func (pm *PracticeManager) simulationOptions(opts SessionOptions) (Options, error) {
	cfg := pm.config
	o := Options{
		TableLength: cfg.TableLength,
		Canvas:      Size{W: cfg.CanvasWidth, H: cfg.CanvasHeight},
		Layout:      LayoutMode(cfg.DefaultLayout),
		Tuning:      cfg.Tuning,
	}
	if opts.TableLength > 0 {
		o.TableLength = opts.TableLength
	}
	if opts.CanvasWidth > 0 && opts.CanvasHeight > 0 {
		o.Canvas = Size{W: opts.CanvasWidth, H: opts.CanvasHeight}
	}
	if opts.Layout != 0 {
		o.Layout = LayoutMode(opts.Layout)
	}
	if _, err := ParseLayoutMode(int(o.Layout)); err != nil {
		return Options{}, err
	}
	if opts.Seed != nil {
		o.Seed = *opts.Seed
	} else {
		o.Seed = rand.Uint64()
	}
	return o, nil
}

// GetSession returns a live session.
func (pm *PracticeManager) GetSession(id string) (*PracticeSession, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	ps, ok := pm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return ps, nil
}

// CloseSession stops the tick loop and forgets the session.
func (pm *PracticeManager) CloseSession(id string) error {
	pm.mu.Lock()
	ps, ok := pm.sessions[id]
	if ok {
		delete(pm.sessions, id)
	}
	pm.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	ps.stop()
	<-ps.Done()
	log.Printf("[PRACTICE] Session %s closed", id)
	return nil
}

func (pm *PracticeManager) SessionCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.sessions)
}

// Shutdown closes every session.
func (pm *PracticeManager) Shutdown() {
	pm.mu.RLock()
	ids := make([]string, 0, len(pm.sessions))
	for id := range pm.sessions {
		ids = append(ids, id)
	}
	pm.mu.RUnlock()
	for _, id := range ids {
		pm.CloseSession(id)
	}
	if pm.stopCache != nil {
		pm.stopCache()
	}
}

// run is the only goroutine that touches ps.sim.
func (pm *PracticeManager) run(ctx context.Context, ps *PracticeSession) {
	defer close(ps.done)

	rate := pm.config.TickRate
	if rate <= 0 {
		rate = 60
	}
	every := pm.config.SnapshotEvery
	if every <= 0 {
		every = 1
	}

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	last := time.Now()
	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			delta := float64(now.Sub(last)) / float64(time.Millisecond)
			last = now

			events := ps.sim.Tick(Input{DeltaMs: delta, Commands: ps.drain()})
			ticks++

			if len(events) == 0 && ticks%every != 0 {
				continue
			}
			snap := ps.sim.Snapshot()
			ps.publish(snap)
			if pm.sink != nil {
				pm.sink.PublishSnapshot(ps.ID, snap)
			}
			if len(events) > 0 {
				pm.handleEvents(ps.ID, events)
				if pm.cache != nil {
					pm.cache.offer(ps.ID, snap)
				}
			}
		}
	}
}

func (pm *PracticeManager) handleEvents(sessionID string, events []Event) {
	for _, ev := range events {
		if pm.sink != nil {
			pm.sink.PublishEvent(sessionID, ev)
		}
		switch ev.Type {
		case EventShotSettled:
			log.Printf("[PRACTICE] Session %s shot %d settled: %s (%d potted)",
				sessionID, ev.Shot.Index, ev.Shot.Outcome, len(ev.Shot.Potted))
			if pm.journal != nil {
				go pm.recordShot(sessionID, *ev.Shot)
			}
		case EventRejected:
			log.Printf("[PRACTICE] Session %s rejected %s", sessionID, ev.Reason)
		}
	}
}

func (pm *PracticeManager) recordShot(sessionID string, shot Shot) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pm.journal.RecordShot(ctx, sessionID, shot); err != nil {
		log.Printf("[DB] Failed to record shot %d for session %s: %v", shot.Index, sessionID, err)
	}
}
