// pkg/core/events.go
package core

import "github.com/go-gl/mathgl/mgl64"

// RuleEventKind tags the variants of RuleEvent.
type RuleEventKind uint8

const (
	KindOffside RuleEventKind = iota + 1
	KindFoul
	KindOutOfBounds
)

func (k RuleEventKind) String() string {
	switch k {
	case KindOffside:
		return "offside"
	case KindFoul:
		return "foul"
	case KindOutOfBounds:
		return "out_of_bounds"
	default:
		return "unknown"
	}
}

// RuleEvent is a match-legality event emitted by the rule engine.
// The set of implementations is closed: OffsideEvent, FoulEvent and
// OutOfBoundsEvent.
type RuleEvent interface {
	Kind() RuleEventKind
	EventMinute() int
	ruleEvent()
}

// OffsideEvent records a player caught offside.
type OffsideEvent struct {
	MatchID  string     `json:"matchId"`
	Player   string     `json:"player"`
	Side     Side       `json:"side"`
	Position mgl64.Vec3 `json:"position"`
	Minute   int        `json:"minute"`
}

// FoulEvent records a foul committed by Aggressor on Victim.
type FoulEvent struct {
	MatchID   string     `json:"matchId"`
	Aggressor string     `json:"aggressor"`
	Victim    string     `json:"victim"`
	Position  mgl64.Vec3 `json:"position"`
	Minute    int        `json:"minute"`
}

// RestartKind is how play resumes after the ball leaves the pitch.
type RestartKind uint8

const (
	RestartGoalKick RestartKind = iota + 1
	RestartCornerKick
	RestartThrowIn
)

func (r RestartKind) String() string {
	switch r {
	case RestartGoalKick:
		return "goal_kick"
	case RestartCornerKick:
		return "corner_kick"
	case RestartThrowIn:
		return "throw_in"
	default:
		return "unknown"
	}
}

// OutOfBoundsEvent records the ball leaving the field of play.
type OutOfBoundsEvent struct {
	MatchID         string      `json:"matchId"`
	Restart         RestartKind `json:"restart"`
	Position        mgl64.Vec3  `json:"position"`
	RestartPosition mgl64.Vec3  `json:"restartPosition"`
	Minute          int         `json:"minute"`
}

func (OffsideEvent) Kind() RuleEventKind     { return KindOffside }
func (FoulEvent) Kind() RuleEventKind        { return KindFoul }
func (OutOfBoundsEvent) Kind() RuleEventKind { return KindOutOfBounds }

func (e OffsideEvent) EventMinute() int     { return e.Minute }
func (e FoulEvent) EventMinute() int        { return e.Minute }
func (e OutOfBoundsEvent) EventMinute() int { return e.Minute }

func (OffsideEvent) ruleEvent()     {}
func (FoulEvent) ruleEvent()        {}
func (OutOfBoundsEvent) ruleEvent() {}

// GoalEvent records a goal. Side is the team credited with the goal.
type GoalEvent struct {
	MatchID   string     `json:"matchId"`
	Side      Side       `json:"side"`
	Scorer    string     `json:"scorer,omitempty"`
	Position  mgl64.Vec3 `json:"position"`
	Minute    int        `json:"minute"`
	HomeScore int        `json:"homeScore"`
	AwayScore int        `json:"awayScore"`
}
