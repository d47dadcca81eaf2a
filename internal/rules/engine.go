// Package rules evaluates offside, fouls and the ball leaving the pitch,
// and tracks the stoppage that follows each call.
package rules

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/kickoff/matchcore/pkg/core"
)

// State is the rule engine's play state.
type State uint8

const (
	StatePlaying State = iota
	StateFoul
	StateOffside
	StateGoalKick
	StateCornerKick
	StateThrowIn
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateFoul:
		return "foul"
	case StateOffside:
		return "offside"
	case StateGoalKick:
		return "goal_kick"
	case StateCornerKick:
		return "corner_kick"
	case StateThrowIn:
		return "throw_in"
	default:
		return "unknown"
	}
}

// Outcome is the result of one Update.
type Outcome struct {
	// Event is the call made this tick, or nil.
	Event core.RuleEvent
	// Resumed is set on the tick a stoppage ends.
	Resumed bool
	// Restart is where the ball must be placed when Resumed and HasRestart
	// are both set.
	Restart    mgl64.Vec3
	HasRestart bool
	// Dropped counts violations seen this tick that were not called.
	Dropped int
}

type violation struct {
	key     string
	state   State
	event   core.RuleEvent
	restart mgl64.Vec3
	place   bool
}

// Engine is the per-match rule state machine. It is not safe for
// concurrent use; the match session owns it.
//
// Only one stoppage is active at a time. Violations detected while a
// stoppage is running are dropped and counted once each.
type Engine struct {
	cfg     Config
	matchID string

	state    State
	deadline time.Duration
	restart  mgl64.Vec3
	place    bool
	seen     map[string]struct{}

	homeAttack float64
	dropped    int
}

// NewEngine creates an engine in the Playing state with the home side
// attacking towards +Z.
func NewEngine(cfg Config, matchID string) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:        cfg,
		matchID:    matchID,
		seen:       make(map[string]struct{}),
		homeAttack: 1,
	}, nil
}

// Config returns the engine's rules.
func (e *Engine) Config() Config { return e.cfg }

// State returns the current play state.
func (e *Engine) State() State { return e.state }

// Deadline returns the match time at which the current stoppage ends.
func (e *Engine) Deadline() time.Duration { return e.deadline }

// Dropped returns the total number of violations dropped so far.
func (e *Engine) Dropped() int { return e.dropped }

// AttackDir returns +1 if side attacks towards +Z, -1 otherwise.
func (e *Engine) AttackDir(side core.Side) float64 {
	if side == core.SideAway {
		return -e.homeAttack
	}
	return e.homeAttack
}

// SwapEnds reverses both teams' attacking directions.
func (e *Engine) SwapEnds() {
	e.homeAttack = -e.homeAttack
}

// Reset ends any stoppage without placing the ball.
func (e *Engine) Reset() {
	e.state = StatePlaying
	e.deadline = 0
	e.place = false
	clear(e.seen)
}

// Update evaluates the rules at match time now. While a stoppage runs
// nothing is called; when its deadline passes the engine returns to
// Playing and reports where the ball restarts. Rules are not evaluated on
// the tick play resumes.
func (e *Engine) Update(now time.Duration, ball core.BallState, players []core.PlayerAgentState) Outcome {
	var out Outcome
	found := e.detect(now, ball, players)

	if e.state != StatePlaying {
		if now >= e.deadline {
			out.Resumed = true
			out.Restart, out.HasRestart = e.restart, e.place
			e.Reset()
			return out
		}
		for _, v := range found {
			if _, dup := e.seen[v.key]; dup {
				continue
			}
			e.seen[v.key] = struct{}{}
			out.Dropped++
		}
		e.dropped += out.Dropped
		return out
	}

	if len(found) == 0 {
		return out
	}

	call := found[0]
	e.state = call.state
	e.deadline = now + e.delay(call.state)
	e.restart, e.place = call.restart, call.place
	clear(e.seen)
	for _, v := range found {
		e.seen[v.key] = struct{}{}
	}
	out.Event = call.event
	out.Dropped = len(found) - 1
	e.dropped += out.Dropped
	return out
}

func (e *Engine) delay(s State) time.Duration {
	switch s {
	case StateFoul:
		return e.cfg.FoulDelay
	case StateOffside:
		return e.cfg.OffsideDelay
	default:
		return e.cfg.RestartDelay
	}
}

// detect lists every violation visible in this tick, offside first, then
// fouls, then the ball leaving the pitch.
func (e *Engine) detect(now time.Duration, ball core.BallState, players []core.PlayerAgentState) []violation {
	var found []violation
	minute := int(now / time.Minute)

	for _, p := range players {
		if p.Role == core.RoleGoalkeeper {
			continue
		}
		opponents := make([]core.PlayerAgentState, 0, len(players))
		for _, o := range players {
			if o.Side != p.Side {
				opponents = append(opponents, o)
			}
		}
		if !Offside(p, ball.Position, opponents, e.AttackDir(p.Side)) {
			continue
		}
		found = append(found, violation{
			key:   "offside/" + p.ID,
			state: StateOffside,
			event: core.OffsideEvent{
				MatchID:  e.matchID,
				Player:   p.ID,
				Side:     p.Side,
				Position: p.Position,
				Minute:   minute,
			},
			restart: mgl64.Vec3{p.Position.X(), 0, p.Position.Z()},
			place:   true,
		})
	}

	for i := 0; i < len(players); i++ {
		for j := i + 1; j < len(players); j++ {
			agg, vic, ok := e.cfg.Foul(players[i], players[j])
			if !ok {
				continue
			}
			found = append(found, violation{
				key:   fmt.Sprintf("foul/%s/%s", agg.ID, vic.ID),
				state: StateFoul,
				event: core.FoulEvent{
					MatchID:   e.matchID,
					Aggressor: agg.ID,
					Victim:    vic.ID,
					Position:  agg.Position,
					Minute:    minute,
				},
			})
		}
	}

	if kind, restart, out := e.cfg.OutOfBounds(ball.Position); out {
		found = append(found, violation{
			key:   "out/" + kind.String(),
			state: restartState(kind),
			event: core.OutOfBoundsEvent{
				MatchID:         e.matchID,
				Restart:         kind,
				Position:        ball.Position,
				RestartPosition: restart,
				Minute:          minute,
			},
			restart: restart,
			place:   true,
		})
	}
	return found
}

func restartState(kind core.RestartKind) State {
	switch kind {
	case core.RestartGoalKick:
		return StateGoalKick
	case core.RestartCornerKick:
		return StateCornerKick
	default:
		return StateThrowIn
	}
}
