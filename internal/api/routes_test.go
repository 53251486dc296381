package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/snooker/internal/api/handlers"
	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/models"
	"github.com/playmatatu/snooker/internal/ws"
)

type fakeHistory struct{}

func (fakeHistory) ListShots(_ context.Context, sessionID string, _ int) ([]models.ShotRecord, error) {
	return []models.ShotRecord{{SessionID: sessionID, ShotIndex: 1, Outcome: "MISS"}}, nil
}

func (fakeHistory) SessionStats(context.Context, string) (models.SessionStats, error) {
	return models.SessionStats{Shots: 1, Misses: 1}, nil
}

func testServer(t *testing.T, history handlers.ShotHistory) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Environment:       "test",
		SessionTimeoutMin: 30,
		MaxSessions:       2,
		TickRate:          120,
		SnapshotEvery:     1,
		TableLength:       900,
		DefaultLayout:     1,
		Tuning:            config.DefaultTuning(),
		JWTSecret:         "test-secret",
	}
	hub := ws.NewHub()
	pm := game.NewPracticeManager(cfg, nil, hub, nil)
	t.Cleanup(pm.Shutdown)

	r := gin.New()
	SetupRoutes(r, pm, hub, history, cfg)
	return r, cfg
}

func do(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type created struct {
	SessionID string        `json:"session_id"`
	Token     string        `json:"token"`
	Snapshot  game.Snapshot `json:"snapshot"`
}

func create(t *testing.T, r *gin.Engine, body interface{}) created {
	t.Helper()
	w := do(r, http.MethodPost, "/api/v1/practice", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", w.Code, w.Body.String())
	}
	var out created
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestHealth(t *testing.T) {
	r, _ := testServer(t, nil)
	w := do(r, http.MethodGet, "/api/v1/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var body map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["status"] != "ok" || body["sessions"] != float64(0) {
		t.Errorf("health %v", body)
	}
}

func TestPracticeFlow(t *testing.T) {
	r, _ := testServer(t, nil)
	s := create(t, r, nil)
	if s.SessionID == "" || s.Token == "" {
		t.Fatalf("create response %+v", s)
	}
	if s.Snapshot.Phase != game.PhaseNoCueBall || len(s.Snapshot.Balls) != 21 {
		t.Errorf("initial snapshot phase=%s balls=%d", s.Snapshot.Phase, len(s.Snapshot.Balls))
	}

	base := "/api/v1/practice/" + s.SessionID
	d := s.Snapshot.Geometry.DCenter
	w := do(r, http.MethodPost, base+"/commands", s.Token, game.Command{Type: game.CmdPlaceCueBall, X: d.X - 56, Y: d.Y + 45})
	if w.Code != http.StatusAccepted {
		t.Fatalf("command status %d: %s", w.Code, w.Body.String())
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		w = do(r, http.MethodGet, base, s.Token, nil)
		var snap game.Snapshot
		if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
			t.Fatal(err)
		}
		if snap.Phase == game.PhaseReady {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("cue ball never placed, phase %s", snap.Phase)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if w := do(r, http.MethodDelete, base, s.Token, nil); w.Code != http.StatusOK {
		t.Errorf("close status %d", w.Code)
	}
	if w := do(r, http.MethodGet, base, s.Token, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after close status %d", w.Code)
	}
}

func TestPracticeErrors(t *testing.T) {
	r, cfg := testServer(t, nil)

	if w := do(r, http.MethodPost, "/api/v1/practice", "", map[string]int{"layout": 9}); w.Code != http.StatusBadRequest {
		t.Errorf("bad layout status %d", w.Code)
	}

	a := create(t, r, map[string]int{"layout": 3})
	b := create(t, r, nil)
	if w := do(r, http.MethodPost, "/api/v1/practice", "", nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("session cap status %d", w.Code)
	}

	base := "/api/v1/practice/" + a.SessionID
	if w := do(r, http.MethodGet, base, "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token status %d", w.Code)
	}
	if w := do(r, http.MethodGet, base, "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status %d", w.Code)
	}
	if w := do(r, http.MethodGet, base, b.Token, nil); w.Code != http.StatusForbidden {
		t.Errorf("other session's token status %d", w.Code)
	}
	if w := do(r, http.MethodGet, base+"?token="+a.Token, "", nil); w.Code != http.StatusOK {
		t.Errorf("query token status %d", w.Code)
	}
	if w := do(r, http.MethodPost, base+"/commands", a.Token, map[string]string{"type": "jump"}); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown command status %d", w.Code)
	}
	if w := do(r, http.MethodGet, base+"/history", a.Token, nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("history without journal status %d", w.Code)
	}

	ghost, err := handlers.IssueSessionToken(cfg, "ghost")
	if err != nil {
		t.Fatal(err)
	}
	if w := do(r, http.MethodGet, "/api/v1/practice/ghost", ghost, nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown session status %d", w.Code)
	}
}

func TestPracticeHistory(t *testing.T) {
	r, _ := testServer(t, fakeHistory{})
	s := create(t, r, nil)

	w := do(r, http.MethodGet, "/api/v1/practice/"+s.SessionID+"/history", s.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history status %d", w.Code)
	}
	var body struct {
		Shots []models.ShotRecord  `json:"shots"`
		Stats models.SessionStats `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Shots) != 1 || body.Stats.Misses != 1 {
		t.Errorf("history %+v", body)
	}
}
