package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/playmatatu/snooker/internal/game"
	rds "github.com/playmatatu/snooker/internal/redis"
	"github.com/redis/go-redis/v9"
)

const eventQueueSize = 256

type publishFunc func(ctx context.Context, sessionID, typ string, v interface{}) (int64, error)

type queuedEvent struct {
	sessionID string
	ev        game.Event
}

// RedisSink sends snapshots straight to local viewers and routes events
// through redis pub/sub so every server instance relays them. Events are
// queued and published by Run, so a slow redis never stalls a tick loop.
type RedisSink struct {
	hub     *Hub
	publish publishFunc
	queue   chan queuedEvent
}

func NewRedisSink(hub *Hub, client *redis.Client) *RedisSink {
	return newRedisSink(hub, rds.NewPublisher(client, rds.EventsChannel).Publish)
}

func newRedisSink(hub *Hub, publish publishFunc) *RedisSink {
	return &RedisSink{
		hub:     hub,
		publish: publish,
		queue:   make(chan queuedEvent, eventQueueSize),
	}
}

func (s *RedisSink) PublishSnapshot(sessionID string, snap game.Snapshot) {
	s.hub.PublishSnapshot(sessionID, snap)
}

// PublishEvent queues ev for redis. When the queue is full the event is
// delivered to local viewers only.
func (s *RedisSink) PublishEvent(sessionID string, ev game.Event) {
	select {
	case s.queue <- queuedEvent{sessionID: sessionID, ev: ev}:
	default:
		log.Printf("[REDIS] Event queue full, delivering %s for session %s locally", ev.Type, sessionID)
		s.hub.PublishEvent(sessionID, ev)
	}
}

// Run publishes queued events until ctx is cancelled.
func (s *RedisSink) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case q := <-s.queue:
			pctx, cancel := context.WithTimeout(ctx, time.Second)
			_, err := s.publish(pctx, q.sessionID, string(q.ev.Type), q.ev)
			cancel()
			if err != nil {
				log.Printf("[REDIS] Publish %s for session %s failed, delivering locally: %v", q.ev.Type, q.sessionID, err)
				s.hub.PublishEvent(q.sessionID, q.ev)
			}
		}
	}
}

// StartEventRelay subscribes to the practice events channel and forwards
// each event to the viewers of its session.
func StartEventRelay(ctx context.Context, client *redis.Client, hub *Hub) error {
	err := rds.Subscribe(ctx, client, rds.EventsChannel, func(env rds.Envelope) {
		hub.broadcastRaw(env.SessionID, relayFrame(env))
	})
	if err != nil {
		return err
	}
	log.Printf("[WS] %s subscriber started", rds.EventsChannel)
	return nil
}

// relayFrame rewraps an envelope as the websocket event frame.
func relayFrame(env rds.Envelope) []byte {
	b, _ := json.Marshal(struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}{Type: "event", Data: env.Data})
	return b
}
