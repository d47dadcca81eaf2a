package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickoff/matchcore/pkg/core"
	"github.com/kickoff/matchcore/pkg/streaming"
)

var ackedTypes = map[string]bool{
	streaming.TypeStartSeason: true,
	streaming.TypeEndSeason:   true,
	streaming.TypeStartMatch:  true,
	streaming.TypeEndMatch:    true,
}

// testServer creates an httptest server that upgrades to WebSocket,
// records received messages, and acks the lifecycle messages.
func testServer(t *testing.T) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ml.setSecret(r.URL.Query().Get("secret"))
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			if ackedTypes[env.Type] {
				ack := streaming.AckMessage{Type: "ack", For: env.Type}
				data, _ := json.Marshal(ack)
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))

	return srv, ml
}

type messageLog struct {
	mu       sync.Mutex
	messages []streaming.Envelope
	secret   string
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, env)
}

func (m *messageLog) setSecret(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secret = s
}

func (m *messageLog) getSecret() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.secret
}

func (m *messageLog) all() []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]streaming.Envelope, len(m.messages))
	copy(cp, m.messages)
	return cp
}

func (m *messageLog) count(msgType string) int {
	n := 0
	for _, env := range m.all() {
		if env.Type == msgType {
			n++
		}
	}
	return n
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestStartAndEndSeason(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "test"}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartSeason(core.SeasonInfo{ID: "s1", League: "L", Number: 1}, []core.Team{{ID: "a"}, {ID: "b"}}))
	require.NoError(t, b.EndSeason(core.SeasonSummary{SeasonID: "s1", ChampionID: "a"}))

	msgs := ml.all()
	require.GreaterOrEqual(t, len(msgs), 2)
	assert.Equal(t, streaming.TypeStartSeason, msgs[0].Type)
	assert.Equal(t, streaming.TypeEndSeason, msgs[len(msgs)-1].Type)
	assert.Equal(t, "test", ml.getSecret())

	var start streaming.StartSeasonPayload
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &start))
	assert.Equal(t, "s1", start.Season.ID)
	assert.Len(t, start.Teams, 2)

	b.conn.mu.Lock()
	defer b.conn.mu.Unlock()
	assert.Nil(t, b.conn.cachedSeasonMsg)
}

func TestFireAndForgetMessages(t *testing.T) {
	srv, ml := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv), Secret: "s"}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartSeason(core.SeasonInfo{ID: "s1"}, nil))
	require.NoError(t, b.SaveFixtures([]core.Fixture{{ID: "f1"}}))
	require.NoError(t, b.StartMatch(core.MatchInfo{ID: "m1"}))
	require.NoError(t, b.RecordRuleEvent(core.FoulEvent{MatchID: "m1", Aggressor: "x", Victim: "y", Minute: 9}))
	require.NoError(t, b.RecordGoal(core.GoalEvent{MatchID: "m1", Side: core.SideHome}))
	require.NoError(t, b.RecordBallSample(core.BallSample{MatchID: "m1", Tick: 6}))
	require.NoError(t, b.EndMatch(core.MatchInfo{ID: "m1", Completed: true}))
	require.NoError(t, b.RecordResult(core.MatchResult{FixtureID: "f1"}))
	require.NoError(t, b.SaveStandings(core.StandingsSnapshot{SeasonID: "s1", Matchday: 1}))
	require.NoError(t, b.EndSeason(core.SeasonSummary{SeasonID: "s1"}))

	require.Eventually(t, func() bool {
		return ml.count(streaming.TypeStandings) == 1
	}, time.Second, 10*time.Millisecond)

	for _, msgType := range []string{
		streaming.TypeStartSeason, streaming.TypeEndSeason,
		streaming.TypeFixtures, streaming.TypeMatchResult,
		streaming.TypeStartMatch, streaming.TypeEndMatch,
		streaming.TypeRuleEvent, streaming.TypeGoal, streaming.TypeBallSample,
	} {
		assert.Equal(t, 1, ml.count(msgType), msgType)
	}

	for _, env := range ml.all() {
		if env.Type != streaming.TypeRuleEvent {
			continue
		}
		var p streaming.RuleEventPayload
		require.NoError(t, json.Unmarshal(env.Payload, &p))
		e, err := p.Decode()
		require.NoError(t, err)
		assert.Equal(t, core.FoulEvent{MatchID: "m1", Aggressor: "x", Victim: "y", Minute: 9}, e)
	}
}

func TestStartMatch_CachesForReplay(t *testing.T) {
	srv, _ := testServer(t)
	defer srv.Close()

	b := New(Config{URL: wsURL(srv)}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartSeason(core.SeasonInfo{ID: "s1"}, nil))
	require.NoError(t, b.StartMatch(core.MatchInfo{ID: "m1"}))

	b.conn.mu.Lock()
	assert.NotNil(t, b.conn.cachedSeasonMsg)
	assert.NotNil(t, b.conn.cachedMatchMsg)
	b.conn.mu.Unlock()

	require.NoError(t, b.EndMatch(core.MatchInfo{ID: "m1"}))

	b.conn.mu.Lock()
	defer b.conn.mu.Unlock()
	assert.NotNil(t, b.conn.cachedSeasonMsg)
	assert.Nil(t, b.conn.cachedMatchMsg)
}

func TestInit_DialFailure(t *testing.T) {
	b := New(Config{URL: "ws://127.0.0.1:1/stream"}, nil)
	assert.Error(t, b.Init())
	assert.NoError(t, b.Close())
}

func TestAckTimeout(t *testing.T) {
	// server that never acks
	upgrader := ws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	b := New(Config{URL: wsURL(srv)}, nil)
	require.NoError(t, b.Init())
	defer b.Close()

	data, err := marshalEnvelope(streaming.TypeStartMatch, core.MatchInfo{ID: "m"})
	require.NoError(t, err)
	err = b.conn.sendAndWait(data, streaming.TypeStartMatch, 50*time.Millisecond)
	assert.ErrorContains(t, err, "timeout")
}

func TestMarshalEnvelope(t *testing.T) {
	data, err := marshalEnvelope(streaming.TypeGoal, core.GoalEvent{MatchID: "m", Minute: 12})
	require.NoError(t, err)

	var env streaming.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, streaming.TypeGoal, env.Type)

	var g core.GoalEvent
	require.NoError(t, json.Unmarshal(env.Payload, &g))
	assert.Equal(t, 12, g.Minute)
}

func TestMarshalEnvelope_BadPayload(t *testing.T) {
	_, err := marshalEnvelope(streaming.TypeGoal, make(chan int))
	assert.Error(t, err)
}
