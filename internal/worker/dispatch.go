package worker

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickoff/matchcore/internal/dispatcher"
	"github.com/kickoff/matchcore/internal/influx"
	"github.com/kickoff/matchcore/internal/storage"
	"github.com/kickoff/matchcore/internal/trajectory"
	"github.com/kickoff/matchcore/pkg/core"
	"github.com/kickoff/matchcore/pkg/streaming"
)

// ForecastEvent is the payload of dispatcher.TopicForecast.
type ForecastEvent struct {
	MatchID  string
	Forecast trajectory.Forecast
	Path     []mgl64.Vec3
}

// RegisterHandlers registers all event handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Season lifecycle and league records - sync so they are stored in order
	d.Register(dispatcher.TopicSeasonStart, m.handleSeasonStart, dispatcher.Logged())
	d.Register(dispatcher.TopicSeasonEnd, m.handleSeasonEnd, dispatcher.Logged())
	d.Register(dispatcher.TopicFixtures, m.handleFixtures, dispatcher.Logged())
	d.Register(dispatcher.TopicResult, m.handleResult, dispatcher.Logged())
	d.Register(dispatcher.TopicStandings, m.handleStandings, dispatcher.Logged())

	// Match lifecycle - sync (rows must exist before events reference them)
	d.Register(dispatcher.TopicMatchStart, m.handleMatchStart, dispatcher.Logged())
	d.Register(dispatcher.TopicMatchEnd, m.handleMatchEnd, dispatcher.Logged())

	// Match events - buffered
	for _, topic := range dispatcher.RuleTopics {
		d.Register(topic, m.async(topic, m.handleRuleEvent), dispatcher.Buffered(1000), dispatcher.Logged())
	}
	d.Register(dispatcher.TopicGoal, m.async(dispatcher.TopicGoal, m.handleGoal), dispatcher.Buffered(500), dispatcher.Logged())
	d.Register(dispatcher.TopicForecast, m.async(dispatcher.TopicForecast, m.handleForecast), dispatcher.Buffered(100), dispatcher.Logged())

	// High-volume telemetry - buffered
	d.Register(dispatcher.TopicBallSample, m.async(dispatcher.TopicBallSample, m.handleBallSample), dispatcher.Buffered(10000), dispatcher.Logged())
}

// async logs errors of handlers that run behind a buffer, whose results
// never reach the publisher.
func (m *Manager) async(topic string, h dispatcher.HandlerFunc) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		res, err := h(e)
		if err != nil {
			m.log.Error("Async handler failed", "topic", topic, "error", err)
		}
		return res, err
	}
}

func payload[T any](e dispatcher.Event) (T, error) {
	v, ok := e.Payload.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w on %s: %T", ErrUnexpectedPayload, e.Topic, e.Payload)
	}
	return v, nil
}

func (m *Manager) handleSeasonStart(e dispatcher.Event) (any, error) {
	p, err := payload[streaming.StartSeasonPayload](e)
	if err != nil {
		return nil, err
	}
	m.deps.SeasonContext.SetSeason(p.Season)
	if err := m.backend.StartSeason(p.Season, p.Teams); err != nil {
		return nil, fmt.Errorf("failed to start season: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleSeasonEnd(e dispatcher.Event) (any, error) {
	summary, err := payload[core.SeasonSummary](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.EndSeason(summary); err != nil {
		return nil, fmt.Errorf("failed to end season: %w", err)
	}

	up, ok := m.backend.(storage.Uploadable)
	if !ok || m.deps.API == nil {
		return nil, nil
	}
	path := up.GetExportedFilePath()
	if path == "" {
		return nil, nil
	}
	if err := m.deps.API.Upload(path, up.GetExportMetadata()); err != nil {
		// the export stays on disk; upload failure is not a storage failure
		m.log.Warn("Season upload failed", "file", path, "error", err)
		return nil, nil
	}
	m.log.Info("Season uploaded", "file", path)
	return nil, nil
}

func (m *Manager) handleFixtures(e dispatcher.Event) (any, error) {
	fixtures, err := payload[[]core.Fixture](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.SaveFixtures(fixtures); err != nil {
		return nil, fmt.Errorf("failed to save fixtures: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleResult(e dispatcher.Event) (any, error) {
	r, err := payload[core.MatchResult](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordResult(r); err != nil {
		return nil, fmt.Errorf("failed to record result: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleStandings(e dispatcher.Event) (any, error) {
	snap, err := payload[core.StandingsSnapshot](e)
	if err != nil {
		return nil, err
	}
	m.deps.SeasonContext.SetMatchday(snap.Matchday)
	if err := m.backend.SaveStandings(snap); err != nil {
		return nil, fmt.Errorf("failed to save standings: %w", err)
	}
	m.writePoints(influx.BucketLeague, influx.StandingsPoints(snap, e.Timestamp)...)
	return nil, nil
}

func (m *Manager) handleMatchStart(e dispatcher.Event) (any, error) {
	info, err := payload[core.MatchInfo](e)
	if err != nil {
		return nil, err
	}
	m.deps.SeasonContext.SetMatch(info.ID, 0)
	if err := m.backend.StartMatch(info); err != nil {
		return nil, fmt.Errorf("failed to start match: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleMatchEnd(e dispatcher.Event) (any, error) {
	info, err := payload[core.MatchInfo](e)
	if err != nil {
		return nil, err
	}
	m.deps.SeasonContext.SetMatch("", 0)
	if err := m.backend.EndMatch(info); err != nil {
		return nil, fmt.Errorf("failed to end match: %w", err)
	}

	if m.deps.API != nil && info.Completed {
		ctx, cancel := context.WithTimeout(context.Background(), m.deps.APITimeout)
		defer cancel()
		if err := m.deps.API.CompleteMatch(ctx, info); err != nil {
			m.log.Warn("Match completion sync failed", "match", info.ID, "error", err)
		}
	}
	return nil, nil
}

func (m *Manager) handleRuleEvent(e dispatcher.Event) (any, error) {
	ev, err := payload[core.RuleEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordRuleEvent(ev); err != nil {
		return nil, fmt.Errorf("failed to record %s: %w", ev.Kind(), err)
	}
	return nil, nil
}

func (m *Manager) handleGoal(e dispatcher.Event) (any, error) {
	g, err := payload[core.GoalEvent](e)
	if err != nil {
		return nil, err
	}
	if err := m.backend.RecordGoal(g); err != nil {
		return nil, fmt.Errorf("failed to record goal: %w", err)
	}
	m.writePoints(influx.BucketMatch, influx.GoalPoint(g, e.Timestamp))
	return nil, nil
}

func (m *Manager) handleBallSample(e dispatcher.Event) (any, error) {
	s, err := payload[core.BallSample](e)
	if err != nil {
		return nil, err
	}
	if id, _ := m.deps.SeasonContext.Match(); id == s.MatchID {
		m.deps.SeasonContext.SetMatch(id, int(s.Clock/60))
	}
	if err := m.backend.RecordBallSample(s); err != nil {
		return nil, fmt.Errorf("failed to record ball sample: %w", err)
	}
	m.writePoints(influx.BucketMatch, influx.BallSamplePoint(s, e.Timestamp))
	return nil, nil
}

func (m *Manager) handleForecast(e dispatcher.Event) (any, error) {
	f, err := payload[ForecastEvent](e)
	if err != nil {
		return nil, err
	}
	rec, ok := m.backend.(storage.ForecastRecorder)
	if !ok {
		return nil, nil
	}
	if err := rec.RecordShotForecast(f.MatchID, f.Forecast, f.Path); err != nil {
		return nil, fmt.Errorf("failed to record forecast: %w", err)
	}
	return nil, nil
}
