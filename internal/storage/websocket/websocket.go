package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kickoff/matchcore/pkg/core"
	"github.com/kickoff/matchcore/pkg/streaming"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL    string
	Secret string
}

// Backend streams season and match data over WebSocket to a league server.
// It implements storage.Backend but not storage.Uploadable.
type Backend struct {
	conn *connection
	cfg  Config
}

// New creates a new WebSocket storage backend. A nil logger uses slog.Default.
func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		conn: newConnection(logger),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{Type: msgType, Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// sendEnvelopeAndWait marshals the payload and waits for a server ack.
func (b *Backend) sendEnvelopeAndWait(msgType string, payload any) error {
	data, err := marshalEnvelope(msgType, payload)
	if err != nil {
		return err
	}
	return b.conn.sendAndWait(data, msgType, ackTimeout)
}

// StartSeason sends the season header and teams and waits for server ack.
func (b *Backend) StartSeason(info core.SeasonInfo, teams []core.Team) error {
	data, err := marshalEnvelope(streaming.TypeStartSeason, streaming.StartSeasonPayload{Season: info, Teams: teams})
	if err != nil {
		return err
	}

	// Cache for reconnect replay.
	b.conn.mu.Lock()
	b.conn.cachedSeasonMsg = data
	b.conn.cachedMatchMsg = nil
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartSeason, ackTimeout)
}

// EndSeason sends the summary and waits for server ack.
func (b *Backend) EndSeason(summary core.SeasonSummary) error {
	err := b.sendEnvelopeAndWait(streaming.TypeEndSeason, summary)

	// Clear cached state regardless of error.
	b.conn.mu.Lock()
	b.conn.cachedSeasonMsg = nil
	b.conn.cachedMatchMsg = nil
	b.conn.mu.Unlock()

	return err
}

func (b *Backend) SaveFixtures(fixtures []core.Fixture) error {
	return b.sendEnvelope(streaming.TypeFixtures, streaming.FixturesPayload{Fixtures: fixtures})
}

func (b *Backend) RecordResult(r core.MatchResult) error {
	return b.sendEnvelope(streaming.TypeMatchResult, r)
}

func (b *Backend) SaveStandings(s core.StandingsSnapshot) error {
	return b.sendEnvelope(streaming.TypeStandings, s)
}

// StartMatch sends the match header and waits for server ack.
func (b *Backend) StartMatch(m core.MatchInfo) error {
	data, err := marshalEnvelope(streaming.TypeStartMatch, m)
	if err != nil {
		return err
	}

	b.conn.mu.Lock()
	b.conn.cachedMatchMsg = data
	b.conn.mu.Unlock()

	return b.conn.sendAndWait(data, streaming.TypeStartMatch, ackTimeout)
}

// EndMatch sends the final score and waits for server ack.
func (b *Backend) EndMatch(m core.MatchInfo) error {
	err := b.sendEnvelopeAndWait(streaming.TypeEndMatch, m)

	b.conn.mu.Lock()
	b.conn.cachedMatchMsg = nil
	b.conn.mu.Unlock()

	return err
}

func (b *Backend) RecordRuleEvent(e core.RuleEvent) error {
	p, err := streaming.NewRuleEventPayload(e)
	if err != nil {
		return err
	}
	return b.sendEnvelope(streaming.TypeRuleEvent, p)
}

func (b *Backend) RecordGoal(g core.GoalEvent) error {
	return b.sendEnvelope(streaming.TypeGoal, g)
}

func (b *Backend) RecordBallSample(s core.BallSample) error {
	return b.sendEnvelope(streaming.TypeBallSample, s)
}
