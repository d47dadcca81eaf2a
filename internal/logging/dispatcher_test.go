package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickoff/matchcore/internal/dispatcher"
)

// liveMatch stands in for the season context the runner keeps current.
type liveMatch struct {
	season, matchday, minute int
	match                    string
}

func (c *liveMatch) attrs() []slog.Attr {
	if c.match == "" {
		return []slog.Attr{slog.Int("season", c.season), slog.Int("matchday", c.matchday)}
	}
	return []slog.Attr{
		slog.Int("season", c.season),
		slog.Int("matchday", c.matchday),
		slog.String("match", c.match),
		slog.Int("minute", c.minute),
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestDispatcherLogger_FailedGoalHandlerCarriesMatchContext(t *testing.T) {
	var buf bytes.Buffer
	live := &liveMatch{season: 2, matchday: 14}
	logger := slog.New(NewContextHandler(
		slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		live.attrs,
	))

	d, err := dispatcher.New(NewDispatcherLogger(logger.With("component", "dispatcher")))
	require.NoError(t, err)
	d.Register(dispatcher.TopicGoal, func(dispatcher.Event) (any, error) {
		return nil, errors.New("standings table locked")
	}, dispatcher.Logged())

	live.match, live.minute = "s2-md14-ars-che", 63
	require.Error(t, d.Publish(dispatcher.TopicGoal, "h9"))

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1, "debug chatter stays below info")
	entry := entries[0]
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "event failed", entry["msg"])
	assert.Equal(t, "goal", entry["topic"])
	assert.Equal(t, "dispatcher", entry["component"])
	assert.Equal(t, "standings table locked", entry["error"])
	assert.Equal(t, "s2-md14-ars-che", entry["match"])
	assert.EqualValues(t, 63, entry["minute"])
	assert.EqualValues(t, 14, entry["matchday"])
	assert.EqualValues(t, 2, entry["season"])
}

func TestDispatcherLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	dl.Debug("handling event", "topic", dispatcher.TopicBallSample)
	dl.Info("handler registered", "topic", dispatcher.TopicStandings, "buffer", 100)
	dl.Error("event dropped", "topic", dispatcher.TopicGoal)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 3)
	assert.Equal(t, "DEBUG", entries[0]["level"])
	assert.Equal(t, dispatcher.TopicBallSample, entries[0]["topic"])
	assert.Equal(t, "INFO", entries[1]["level"])
	assert.EqualValues(t, 100, entries[1]["buffer"])
	assert.Equal(t, "ERROR", entries[2]["level"])
	assert.Equal(t, "event dropped", entries[2]["msg"])
}

func TestDispatcherLogger_SatisfiesDispatcher(t *testing.T) {
	var _ dispatcher.Logger = NewDispatcherLogger(slog.Default())
}

func TestContextHandler_FollowsTheLiveMatch(t *testing.T) {
	var buf bytes.Buffer
	live := &liveMatch{season: 1, matchday: 3}
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil), live.attrs))

	logger.Info("Matchday started")
	live.match, live.minute = "s1-md3-lee-bur", 12
	logger.Info("Goal")
	live.minute = 88
	logger.WithGroup("rules").Info("Offside", "attacker", "b11")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 3)
	assert.NotContains(t, entries[0], "match", "no match running yet")
	assert.EqualValues(t, 3, entries[0]["matchday"])
	assert.Equal(t, "s1-md3-lee-bur", entries[1]["match"])
	assert.EqualValues(t, 12, entries[1]["minute"])

	// group names apply to the record attrs the provider adds as well
	rules, ok := entries[2]["rules"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "b11", rules["attacker"])
	assert.EqualValues(t, 88, rules["minute"])
}

func TestContextHandler_NilProviderAndEmptyGroup(t *testing.T) {
	var buf bytes.Buffer
	h := NewContextHandler(slog.NewJSONHandler(&buf, nil), nil)
	assert.Same(t, h, h.WithGroup(""))

	slog.New(h).With("component", "league").Info("Fixtures generated", "rounds", 38)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "league", entries[0]["component"])
	assert.EqualValues(t, 38, entries[0]["rounds"])
	assert.NotContains(t, entries[0], "season")
}
