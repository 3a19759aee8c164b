package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/messages"
	"github.com/cbodonnell/simon/pkg/network"
	"github.com/cbodonnell/simon/pkg/presentation"
	"github.com/cbodonnell/simon/pkg/repositories"
	"github.com/cbodonnell/simon/pkg/repositories/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type fakeGame struct {
	lock   sync.Mutex
	inputs []string
	level  string
	named  bool
}

func (g *fakeGame) SubmitRemoteInput(raw string) (types.Color, bool) {
	g.lock.Lock()
	defer g.lock.Unlock()
	if raw != "blue" {
		return "", false
	}
	g.inputs = append(g.inputs, raw)
	return types.Color(raw), true
}

func (g *fakeGame) SubmitNameForScore(name string) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	if g.named {
		return false
	}
	g.named = true
	return true
}

func (g *fakeGame) SetDifficulty(level string) (string, bool) {
	g.lock.Lock()
	defer g.lock.Unlock()
	level = strings.ToLower(strings.TrimSpace(level))
	if level != "easy" {
		return "", false
	}
	g.level = level
	return level, true
}

func (g *fakeGame) Snapshot(ctx context.Context) (*types.Snapshot, error) {
	return &types.Snapshot{Phase: types.PhaseAwaitInput, SequenceLength: 3, Difficulty: "medium"}, nil
}

func (g *fakeGame) PendingScore() (int, bool) {
	return 0, false
}

func newTestServer(t *testing.T, game *fakeGame, token string) string {
	ctx := context.Background()
	repository := repositories.NewMemoryRepository()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, s := range []*models.Score{
		{Name: "alice", Score: 4, Difficulty: "easy"},
		{Name: "bob", Score: 11, Difficulty: "hard"},
		{Name: "alice", Score: 9, Difficulty: "medium"},
	} {
		s.AchievedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repository.AddScore(ctx, s))
	}

	reg := prometheus.NewRegistry()
	s := NewAPIServer(NewAPIServerOptions{
		Repository:     repository,
		Game:           game,
		NetworkManager: network.NewNetworkManager(network.NewNetworkManagerOptions{Game: game}),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ControlToken:   token,
		HighscoreLimit: 2,
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func decodeScores(t *testing.T, resp *http.Response) []*models.Score {
	defer resp.Body.Close()
	var scores []*models.Score
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&scores))
	return scores
}

func TestAPIServer_highscores(t *testing.T) {
	url := newTestServer(t, &fakeGame{}, "")

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantScores []int
	}{
		{name: "default limit", path: "/api/highscores", wantStatus: http.StatusOK, wantScores: []int{11, 9}},
		{name: "explicit limit", path: "/api/highscores?limit=3", wantStatus: http.StatusOK, wantScores: []int{11, 9, 4}},
		{name: "invalid limit", path: "/api/highscores?limit=zero", wantStatus: http.StatusBadRequest},
		{name: "limit too large", path: "/api/highscores?limit=1000", wantStatus: http.StatusBadRequest},
		{name: "player", path: "/api/highscores/alice", wantStatus: http.StatusOK, wantScores: []int{9, 4}},
		{name: "unknown player", path: "/api/highscores/nobody", wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(url + tt.path)
			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
			if tt.wantStatus != http.StatusOK {
				resp.Body.Close()
				return
			}
			scores := decodeScores(t, resp)
			got := make([]int, len(scores))
			for i, s := range scores {
				got[i] = s.Score
			}
			assert.Equal(t, tt.wantScores, got)
		})
	}
}

func TestAPIServer_control(t *testing.T) {
	game := &fakeGame{}
	url := newTestServer(t, game, "")

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{name: "remote input", path: "/api/remote/input", body: `{"color":"blue"}`, wantStatus: http.StatusAccepted},
		{name: "unknown color", path: "/api/remote/input", body: `{"color":"mauve"}`, wantStatus: http.StatusBadRequest},
		{name: "bad body", path: "/api/remote/input", body: `blue`, wantStatus: http.StatusBadRequest},
		{name: "difficulty", path: "/api/difficulty", body: `{"level":"easy"}`, wantStatus: http.StatusOK},
		{name: "unknown difficulty", path: "/api/difficulty", body: `{"level":"nightmare"}`, wantStatus: http.StatusBadRequest},
		{name: "name", path: "/api/name", body: `{"name":"alice"}`, wantStatus: http.StatusAccepted},
		{name: "second name", path: "/api/name", body: `{"name":"bob"}`, wantStatus: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(url+tt.path, "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}

	game.lock.Lock()
	defer game.lock.Unlock()
	assert.Equal(t, []string{"blue"}, game.inputs)
	assert.Equal(t, "easy", game.level)
}

func TestAPIServer_controlToken(t *testing.T) {
	game := &fakeGame{}
	url := newTestServer(t, game, "s3cret")

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing", wantStatus: http.StatusUnauthorized},
		{name: "malformed", header: "s3cret", wantStatus: http.StatusUnauthorized},
		{name: "wrong", header: "Bearer guess", wantStatus: http.StatusUnauthorized},
		{name: "valid", header: "Bearer s3cret", wantStatus: http.StatusAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, url+"/api/remote/input", strings.NewReader(`{"color":"blue"}`))
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}

	// preflight requests never carry the token
	req, err := http.NewRequest(http.MethodOptions, url+"/api/remote/input", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	state, err := http.Get(url + "/api/state")
	require.NoError(t, err)
	defer state.Body.Close()
	assert.Equal(t, http.StatusOK, state.StatusCode)
}

func TestAPIServer_state(t *testing.T) {
	url := newTestServer(t, &fakeGame{}, "")

	resp, err := http.Get(url + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	snapshot := &types.Snapshot{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(snapshot))
	assert.Equal(t, types.PhaseAwaitInput, snapshot.Phase)
	assert.Equal(t, 3, snapshot.SequenceLength)
}

func TestAPIServer_methodNotAllowed(t *testing.T) {
	url := newTestServer(t, &fakeGame{}, "")

	resp, err := http.Get(url + "/api/remote/input")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAPIServer_metricsAndWebSocket(t *testing.T) {
	url := newTestServer(t, &fakeGame{}, "")

	resp, err := http.Get(url + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	msg := &messages.Message{}
	require.NoError(t, wsjson.Read(ctx, conn, msg))
	assert.Equal(t, messages.MessageTypeServerGameStatus, msg.Type)
}

func TestAPIServer_webSocketToken(t *testing.T) {
	url := "ws" + strings.TrimPrefix(newTestServer(t, &fakeGame{}, "s3cret"), "http") + "/ws"

	tests := []struct {
		name       string
		query      string
		header     string
		wantStatus int
	}{
		{name: "missing", wantStatus: http.StatusUnauthorized},
		{name: "wrong query token", query: "?token=guess", wantStatus: http.StatusUnauthorized},
		{name: "wrong header", header: "Bearer guess", wantStatus: http.StatusUnauthorized},
		{name: "query token", query: "?token=s3cret", wantStatus: http.StatusSwitchingProtocols},
		{name: "bearer header", header: "Bearer s3cret", wantStatus: http.StatusSwitchingProtocols},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			header := http.Header{}
			if tt.header != "" {
				header.Set("Authorization", tt.header)
			}
			conn, resp, err := websocket.Dial(ctx, url+tt.query, &websocket.DialOptions{HTTPHeader: header})
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus != http.StatusSwitchingProtocols {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			conn.Close(websocket.StatusNormalClosure, "")
		})
	}
}

func TestAPIServer_difficultyNormalized(t *testing.T) {
	game := &fakeGame{}
	url := newTestServer(t, game, "")

	resp, err := http.Post(url+"/api/difficulty", "application/json", strings.NewReader(`{"level":" EASY "}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["accepted"])
	assert.Equal(t, "easy", body["level"])
}

func TestAPIServer_remotePressEcho(t *testing.T) {
	var lock sync.Mutex
	var echoes []types.LedStatePayload
	s := NewAPIServer(NewAPIServerOptions{
		Repository: repositories.NewMemoryRepository(),
		Game:       &fakeGame{},
		Sink: presentation.SinkFunc(func(kind types.EventKind, payload interface{}) {
			lock.Lock()
			defer lock.Unlock()
			if kind == types.EventLedState {
				echoes = append(echoes, payload.(types.LedStatePayload))
			}
		}),
	})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	for _, body := range []string{`{"color":"mauve"}`, `{"color":"blue"}`} {
		resp, err := http.Post(srv.URL+"/api/remote/input", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
	}

	lock.Lock()
	defer lock.Unlock()
	assert.Equal(t, []types.LedStatePayload{{Color: "blue", State: types.LedOn}}, echoes)
}
