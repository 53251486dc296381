package game

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrSessionClosed    = errors.New("practice session closed")
	ErrCommandQueueFull = errors.New("command queue full")
	ErrSessionNotFound  = errors.New("practice session not found")
	ErrTooManySessions  = errors.New("too many practice sessions")
)

const commandQueueSize = 64

// EventSink receives what a session produces. Implementations must not block.
type EventSink interface {
	PublishSnapshot(sessionID string, snap Snapshot)
	PublishEvent(sessionID string, ev Event)
}

// ShotJournal records settled shots for practice statistics.
type ShotJournal interface {
	RecordShot(ctx context.Context, sessionID string, shot Shot) error
}

// PracticeSession hosts one Simulation on its own goroutine. Everything
// outside the loop talks to it through Submit and Snapshot.
type PracticeSession struct {
	ID        string
	CreatedAt time.Time

	sim      *Simulation
	commands chan Command
	done     chan struct{}
	cancel   context.CancelFunc

	mu           sync.RWMutex
	snapshot     Snapshot
	lastActivity time.Time
	closed       bool
}

func newPracticeSession(id string, sim *Simulation) *PracticeSession {
	now := time.Now()
	return &PracticeSession{
		ID:           id,
		CreatedAt:    now,
		sim:          sim,
		commands:     make(chan Command, commandQueueSize),
		done:         make(chan struct{}),
		snapshot:     sim.Snapshot(),
		lastActivity: now,
	}
}

// Submit queues a command for the next tick.
func (ps *PracticeSession) Submit(cmd Command) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed {
		return ErrSessionClosed
	}
	select {
	case ps.commands <- cmd:
		ps.lastActivity = time.Now()
		return nil
	default:
		return ErrCommandQueueFull
	}
}

// Snapshot returns the most recently published state.
func (ps *PracticeSession) Snapshot() Snapshot {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.snapshot
}

func (ps *PracticeSession) LastActivity() time.Time {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.lastActivity
}

// Touch marks the session as in use without sending a command.
func (ps *PracticeSession) Touch() {
	ps.mu.Lock()
	ps.lastActivity = time.Now()
	ps.mu.Unlock()
}

// Done is closed when the tick loop has exited.
func (ps *PracticeSession) Done() <-chan struct{} {
	return ps.done
}

func (ps *PracticeSession) publish(snap Snapshot) {
	ps.mu.Lock()
	ps.snapshot = snap
	ps.mu.Unlock()
}

func (ps *PracticeSession) stop() {
	ps.mu.Lock()
	if ps.closed {
		ps.mu.Unlock()
		return
	}
	ps.closed = true
	ps.mu.Unlock()
	if ps.cancel != nil {
		ps.cancel()
	}
}

// drain takes every queued command without blocking.
func (ps *PracticeSession) drain() []Command {
	var cmds []Command
	for {
		select {
		case c := <-ps.commands:
			cmds = append(cmds, c)
		default:
			return cmds
		}
	}
}
