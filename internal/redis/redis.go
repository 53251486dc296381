package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// EventsChannel carries practice events between processes.
const EventsChannel = "practice_events"

// Connect establishes a connection to Redis
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Envelope is the pub/sub payload: one event for one session.
type Envelope struct {
	SessionID string          `json:"session_id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
}

// Publisher writes JSON envelopes to a pub/sub channel.
type Publisher struct {
	client  *redis.Client
	channel string
}

func NewPublisher(client *redis.Client, channel string) *Publisher {
	return &Publisher{client: client, channel: channel}
}

// Publish marshals v and sends it tagged with the session id. It returns the
// number of subscribers that received it.
func (p *Publisher) Publish(ctx context.Context, sessionID, typ string, v interface{}) (int64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	b, err := json.Marshal(Envelope{SessionID: sessionID, Type: typ, Data: data})
	if err != nil {
		return 0, fmt.Errorf("marshal envelope: %w", err)
	}
	return p.client.Publish(ctx, p.channel, b).Result()
}

// Subscribe decodes envelopes from channel and hands them to fn until ctx
// is cancelled. Malformed payloads are skipped.
func Subscribe(ctx context.Context, client *redis.Client, channel string, fn func(Envelope)) error {
	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var env Envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil || env.SessionID == "" {
					continue
				}
				fn(env)
			}
		}
	}()
	return nil
}
