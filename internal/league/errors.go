package league

import "errors"

var (
	ErrOddTeamCount    = errors.New("odd team count: fixtures need an even number of teams")
	ErrTooFewTeams     = errors.New("a league needs at least two teams")
	ErrDuplicateTeam   = errors.New("duplicate team id")
	ErrUnknownTeam     = errors.New("unknown team")
	ErrNegativeScore   = errors.New("negative score")
	ErrFixtureNotFound = errors.New("no unplayed fixture for teams")
	ErrAlreadyPlayed   = errors.New("fixture already played")
	ErrSeasonOpen      = errors.New("season still has unplayed fixtures")
	ErrNoRand          = errors.New("no random source configured")
)
