// Package streaming defines the wire protocol spoken between the match
// engine and a live league server over WebSocket.
package streaming

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kickoff/matchcore/pkg/core"
)

// Message type constants matching the streaming protocol.
const (
	TypeStartSeason = "start_season"
	TypeEndSeason   = "end_season"
	TypeFixtures    = "fixtures"
	TypeMatchResult = "match_result"
	TypeStandings   = "standings"
	TypeStartMatch  = "start_match"
	TypeEndMatch    = "end_match"
	TypeRuleEvent   = "rule_event"
	TypeGoal        = "goal"
	TypeBallSample  = "ball_sample"
)

// ErrUnknownRuleEvent is returned when a rule event payload names a kind
// this version does not know.
var ErrUnknownRuleEvent = errors.New("unknown rule event kind")

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// StartSeasonPayload carries the season header and its teams.
type StartSeasonPayload struct {
	Season core.SeasonInfo `json:"season"`
	Teams  []core.Team     `json:"teams"`
}

// FixturesPayload carries a batch of scheduled fixtures.
type FixturesPayload struct {
	Fixtures []core.Fixture `json:"fixtures"`
}

// RuleEventPayload carries one rule event tagged with its kind so the
// receiver can pick the concrete type.
type RuleEventPayload struct {
	Kind  string          `json:"kind"`
	Event json.RawMessage `json:"event"`
}

// NewRuleEventPayload encodes e with its kind tag.
func NewRuleEventPayload(e core.RuleEvent) (RuleEventPayload, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return RuleEventPayload{}, fmt.Errorf("marshal %s event: %w", e.Kind(), err)
	}
	return RuleEventPayload{Kind: e.Kind().String(), Event: raw}, nil
}

// Decode returns the concrete rule event carried by p.
func (p RuleEventPayload) Decode() (core.RuleEvent, error) {
	switch p.Kind {
	case core.KindOffside.String():
		var e core.OffsideEvent
		err := json.Unmarshal(p.Event, &e)
		return e, err
	case core.KindFoul.String():
		var e core.FoulEvent
		err := json.Unmarshal(p.Event, &e)
		return e, err
	case core.KindOutOfBounds.String():
		var e core.OutOfBoundsEvent
		err := json.Unmarshal(p.Event, &e)
		return e, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRuleEvent, p.Kind)
	}
}
