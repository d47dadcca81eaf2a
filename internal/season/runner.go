package season

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kickoff/matchcore/internal/dispatcher"
	"github.com/kickoff/matchcore/internal/league"
	"github.com/kickoff/matchcore/pkg/core"
	"github.com/kickoff/matchcore/pkg/streaming"
)

// ErrMatchdayUnfinished is returned when a MatchdayFunc leaves fixtures of
// its matchday unplayed.
var ErrMatchdayUnfinished = errors.New("matchday left unplayed fixtures")

// Publisher receives league events. *dispatcher.Dispatcher satisfies it.
type Publisher interface {
	Publish(topic string, payload any) error
}

// MatchdayFunc plays the fixtures of one matchday and returns the
// registered results. A nil MatchdayFunc simulates scores.
type MatchdayFunc func(ctx context.Context, s *league.Season, matchday int) ([]core.MatchResult, error)

// Runner plays a season matchday by matchday and publishes every step.
type Runner struct {
	pub      Publisher
	ctx      *Context
	log      *slog.Logger
	matchday MatchdayFunc
}

// NewRunner creates a Runner. seasonCtx and log may be nil.
func NewRunner(pub Publisher, seasonCtx *Context, log *slog.Logger, play MatchdayFunc) *Runner {
	if seasonCtx == nil {
		seasonCtx = NewContext()
	}
	if log == nil {
		log = slog.Default()
	}
	if play == nil {
		play = func(_ context.Context, s *league.Season, md int) ([]core.MatchResult, error) {
			return s.SimulateMatchday(md)
		}
	}
	return &Runner{pub: pub, ctx: seasonCtx, log: log, matchday: play}
}

// Run plays every remaining matchday of s and returns its summary.
// Cancelling ctx stops between matchdays.
func (r *Runner) Run(ctx context.Context, s *league.Season) (core.SeasonSummary, error) {
	info := s.Info()
	r.ctx.SetSeason(info)

	if err := r.publish(dispatcher.TopicSeasonStart, streaming.StartSeasonPayload{
		Season: info,
		Teams:  s.Teams(),
	}); err != nil {
		return core.SeasonSummary{}, err
	}
	if err := r.publish(dispatcher.TopicFixtures, s.Fixtures()); err != nil {
		return core.SeasonSummary{}, err
	}

	for {
		md, ok := s.CurrentMatchday()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return core.SeasonSummary{}, err
		}

		r.ctx.SetMatchday(md)
		results, err := r.matchday(ctx, s, md)
		if err != nil {
			return core.SeasonSummary{}, fmt.Errorf("matchday %d: %w", md, err)
		}
		for _, res := range results {
			if err := r.publish(dispatcher.TopicResult, res); err != nil {
				return core.SeasonSummary{}, err
			}
		}
		if err := r.publish(dispatcher.TopicStandings, s.Snapshot(md)); err != nil {
			return core.SeasonSummary{}, err
		}
		if next, ok := s.CurrentMatchday(); ok && next == md {
			return core.SeasonSummary{}, fmt.Errorf("matchday %d: %w", md, ErrMatchdayUnfinished)
		}
		r.log.Debug("Matchday complete", "matchday", md, "results", len(results))
	}

	summary, err := s.Summary()
	if err != nil {
		return summary, err
	}
	if err := r.publish(dispatcher.TopicSeasonEnd, summary); err != nil {
		return summary, err
	}
	r.log.Info("Season complete",
		"season", summary.Number,
		"champion", summary.ChampionID,
		"matches", summary.Matches)
	return summary, nil
}

func (r *Runner) publish(topic string, payload any) error {
	if r.pub == nil {
		return nil
	}
	if err := r.pub.Publish(topic, payload); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
