package season

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickoff/matchcore/internal/dispatcher"
	"github.com/kickoff/matchcore/internal/league"
	"github.com/kickoff/matchcore/pkg/core"
	"github.com/kickoff/matchcore/pkg/streaming"
)

type recorder struct {
	mu     sync.Mutex
	topics []string
	events []any
	failOn string
}

func (r *recorder) Publish(topic string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if topic == r.failOn {
		return errors.New("boom")
	}
	r.topics = append(r.topics, topic)
	r.events = append(r.events, payload)
	return nil
}

func (r *recorder) count(topic string) int {
	n := 0
	for _, t := range r.topics {
		if t == topic {
			n++
		}
	}
	return n
}

func fourTeams() []core.Team {
	teams := make([]core.Team, 4)
	for i := range teams {
		teams[i] = core.Team{ID: fmt.Sprintf("t%d", i+1), Name: fmt.Sprintf("Team %d", i+1), Overall: 70 + i}
	}
	return teams
}

func newSeason(t *testing.T) *league.Season {
	t.Helper()
	s, err := league.NewSeason("Test League", 1, fourTeams(), rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	return s
}

func TestRunner_PublishesSeason(t *testing.T) {
	rec := &recorder{}
	sctx := NewContext()
	s := newSeason(t)

	summary, err := NewRunner(rec, sctx, nil, nil).Run(context.Background(), s)
	require.NoError(t, err)

	assert.True(t, s.IsComplete())
	assert.Equal(t, 12, summary.Matches)
	assert.NotEmpty(t, summary.ChampionID)

	require.NotEmpty(t, rec.topics)
	assert.Equal(t, dispatcher.TopicSeasonStart, rec.topics[0])
	assert.Equal(t, dispatcher.TopicFixtures, rec.topics[1])
	assert.Equal(t, dispatcher.TopicSeasonEnd, rec.topics[len(rec.topics)-1])
	assert.Equal(t, 12, rec.count(dispatcher.TopicResult))
	assert.Equal(t, 6, rec.count(dispatcher.TopicStandings))

	start, ok := rec.events[0].(streaming.StartSeasonPayload)
	require.True(t, ok)
	assert.Equal(t, s.ID(), start.Season.ID)
	assert.Len(t, start.Teams, 4)

	assert.Equal(t, s.ID(), sctx.Season().ID)
	assert.Equal(t, 6, sctx.Matchday())
}

func TestRunner_CustomMatchday(t *testing.T) {
	var played []int
	play := func(_ context.Context, s *league.Season, md int) ([]core.MatchResult, error) {
		played = append(played, md)
		var out []core.MatchResult
		for _, f := range s.UpcomingFixtures(md) {
			r, err := s.RegisterFixtureResult(f.ID, 1, 1)
			if err != nil {
				return out, err
			}
			out = append(out, r)
		}
		return out, nil
	}

	summary, err := NewRunner(nil, nil, nil, play).Run(context.Background(), newSeason(t))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, played)
	assert.InDelta(t, 2.0, summary.AverageGoalsPerMatch, 1e-9)
}

func TestRunner_UnfinishedMatchday(t *testing.T) {
	noop := func(context.Context, *league.Season, int) ([]core.MatchResult, error) { return nil, nil }

	_, err := NewRunner(nil, nil, nil, noop).Run(context.Background(), newSeason(t))
	assert.ErrorIs(t, err, ErrMatchdayUnfinished)
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, nil, nil).Run(ctx, newSeason(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_PublishError(t *testing.T) {
	rec := &recorder{failOn: dispatcher.TopicStandings}

	_, err := NewRunner(rec, nil, nil, nil).Run(context.Background(), newSeason(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish standings")
}
