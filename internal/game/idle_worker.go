package game

import (
	"context"
	"log"
	"time"
)

// StartIdleReaper closes sessions that have had no activity for longer than
// timeout. It runs until ctx is cancelled.
func (pm *PracticeManager) StartIdleReaper(ctx context.Context, interval, timeout time.Duration) {
	if timeout <= 0 {
		log.Println("[IDLE] Session timeout disabled; idle reaper not started")
		return
	}

	log.Println("[IDLE] Idle reaper started")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle reaper stopping")
				return
			case <-ticker.C:
				if n := pm.reapIdle(time.Now(), timeout); n > 0 {
					log.Printf("[IDLE] Reaped %d idle sessions", n)
				}
			}
		}
	}()
}

// reapIdle closes every session idle since before now-timeout.
func (pm *PracticeManager) reapIdle(now time.Time, timeout time.Duration) int {
	pm.mu.RLock()
	var idle []string
	for id, ps := range pm.sessions {
		if now.Sub(ps.LastActivity()) >= timeout {
			idle = append(idle, id)
		}
	}
	pm.mu.RUnlock()

	reaped := 0
	for _, id := range idle {
		// Re-check: a command may have arrived since the scan.
		ps, err := pm.GetSession(id)
		if err != nil || now.Sub(ps.LastActivity()) < timeout {
			continue
		}
		if err := pm.CloseSession(id); err == nil {
			log.Printf("[IDLE] Session %s closed after %s idle", id, now.Sub(ps.LastActivity()).Round(time.Second))
			reaped++
		}
	}
	return reaped
}
