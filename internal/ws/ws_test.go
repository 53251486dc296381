package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/game"
	rds "github.com/playmatatu/snooker/internal/redis"
)

func TestDecodeCommand(t *testing.T) {
	cmd, err := decodeCommand(inbound{Type: "place_cue_ball", Data: json.RawMessage(`{"x":150.5,"y":290}`)})
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Type != game.CmdPlaceCueBall || cmd.X != 150.5 || cmd.Y != 290 {
		t.Errorf("decoded %+v", cmd)
	}

	cmd, err = decodeCommand(inbound{Type: "fire"})
	if err != nil || cmd.Type != game.CmdFire {
		t.Errorf("fire without data: %+v, %v", cmd, err)
	}

	cmd, err = decodeCommand(inbound{Type: "reset_layout", Data: json.RawMessage(`{"mode":2,"type":"fire"}`)})
	if err != nil || cmd.Type != game.CmdResetLayout || cmd.Mode != 2 {
		t.Errorf("frame type must win over data type: %+v, %v", cmd, err)
	}

	if _, err := decodeCommand(inbound{Type: "jump"}); err == nil {
		t.Errorf("unknown type accepted")
	}
	if _, err := decodeCommand(inbound{Type: "set_aim", Data: json.RawMessage(`{"angle":"left"}`)}); err == nil {
		t.Errorf("malformed data accepted")
	}
}

type frame struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// readUntil reads frames until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, what string, match func(frame) bool) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("waiting for %s: %v", what, err)
		}
		if match(f) {
			return
		}
	}
}

func TestWebSocketSessionFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		SessionTimeoutMin: 30,
		MaxSessions:       4,
		TickRate:          120,
		SnapshotEvery:     4,
		TableLength:       900,
		DefaultLayout:     1,
		Tuning:            config.DefaultTuning(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub()
	go hub.Run(ctx)

	pm := game.NewPracticeManager(cfg, nil, hub, nil)
	defer pm.Shutdown()
	ps, err := pm.CreateSession(game.SessionOptions{})
	if err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	r.GET("/practice/:id/ws", HandleWebSocket(pm, hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/practice/" + ps.ID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readUntil(t, conn, "initial snapshot", func(f frame) bool {
		var snap game.Snapshot
		return f.Type == "snapshot" && json.Unmarshal(f.Data, &snap) == nil && snap.Phase == game.PhaseNoCueBall
	})

	d := ps.Snapshot().Geometry.DCenter
	conn.WriteJSON(map[string]interface{}{
		"type": "place_cue_ball",
		"data": map[string]float64{"x": d.X - 56, "y": d.Y + 45},
	})
	readUntil(t, conn, "placement event", func(f frame) bool {
		var ev game.Event
		return f.Type == "event" && json.Unmarshal(f.Data, &ev) == nil && ev.Type == game.EventPlacement
	})

	conn.WriteJSON(map[string]string{"type": "jump"})
	readUntil(t, conn, "error frame", func(f frame) bool {
		return f.Type == "error" && strings.Contains(f.Message, "jump")
	})
}

func TestWebSocketUnknownSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	pm := game.NewPracticeManager(&config.Config{Tuning: config.DefaultTuning()}, nil, hub, nil)

	r := gin.New()
	r.GET("/practice/:id/ws", HandleWebSocket(pm, hub))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/practice/nope/ws", nil))
	if w.Code != 404 {
		t.Errorf("status %d, want 404", w.Code)
	}
}

func TestRelayFrame(t *testing.T) {
	b := relayFrame(rds.Envelope{SessionID: "abc", Type: "pot", Data: json.RawMessage(`{"type":"pot","tick":3}`)})
	var f frame
	if err := json.Unmarshal(b, &f); err != nil {
		t.Fatal(err)
	}
	if f.Type != "event" || string(f.Data) != `{"type":"pot","tick":3}` {
		t.Errorf("relay frame %s", b)
	}
}

func TestRedisSinkNeverBlocksTheCaller(t *testing.T) {
	hub := NewHub()
	viewer := &Client{id: "v", sessionID: "s1", hub: hub, send: make(chan []byte, 64)}
	hub.rooms["s1"] = map[*Client]struct{}{viewer: {}}

	var published int32
	release := make(chan struct{})
	sink := newRedisSink(hub, func(ctx context.Context, _, _ string, _ interface{}) (int64, error) {
		<-release
		atomic.AddInt32(&published, 1)
		return 1, nil
	})

	// nothing drains the queue yet, as if redis had stalled
	start := time.Now()
	for i := 0; i < eventQueueSize+10; i++ {
		sink.PublishEvent("s1", game.Event{Type: game.EventPot, Tick: uint64(i)})
	}
	if d := time.Since(start); d > 500*time.Millisecond {
		t.Fatalf("PublishEvent blocked for %s", d)
	}
	if n := len(viewer.send); n != 10 {
		t.Errorf("overflow delivered locally %d times, want 10", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	close(release)
	go sink.Run(ctx)

	deadline := time.Now().Add(3 * time.Second)
	for atomic.LoadInt32(&published) < eventQueueSize {
		if time.Now().After(deadline) {
			t.Fatalf("published %d of %d queued events", atomic.LoadInt32(&published), eventQueueSize)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRedisSinkFallsBackOnPublishError(t *testing.T) {
	hub := NewHub()
	viewer := &Client{id: "v", sessionID: "s1", hub: hub, send: make(chan []byte, 4)}
	hub.rooms["s1"] = map[*Client]struct{}{viewer: {}}

	sink := newRedisSink(hub, func(context.Context, string, string, interface{}) (int64, error) {
		return 0, errors.New("connection refused")
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sink.Run(ctx)

	sink.PublishEvent("s1", game.Event{Type: game.EventFrameOver})
	select {
	case data := <-viewer.send:
		var f frame
		if err := json.Unmarshal(data, &f); err != nil || f.Type != "event" {
			t.Errorf("local frame %s", data)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("event not delivered locally after publish failure")
	}
}
