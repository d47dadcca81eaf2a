package league

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/kickoff/matchcore/pkg/core"
)

// Rand is the random source used for shuffling and simulated results.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

func teamIDs(teams []core.Team) ([]string, error) {
	if len(teams) < 2 {
		return nil, ErrTooFewTeams
	}
	if len(teams)%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrOddTeamCount, len(teams))
	}
	ids := make([]string, len(teams))
	seen := make(map[string]struct{}, len(teams))
	for i, t := range teams {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTeam, t.ID)
		}
		seen[t.ID] = struct{}{}
		ids[i] = t.ID
	}
	return ids, nil
}

// GenerateFixtures builds a double round robin for an even number of teams
// with the circle method. The first team stays fixed while the others rotate
// one place per round. The second half of the season mirrors the first with
// home and away swapped, giving 2(N-1) matchdays and N(N-1) fixtures.
func GenerateFixtures(teams []core.Team, season int) ([]core.Fixture, error) {
	ids, err := teamIDs(teams)
	if err != nil {
		return nil, err
	}
	n := len(ids)
	rounds := n - 1

	rot := make([]int, n)
	for i := range rot {
		rot[i] = i
	}

	fixtures := make([]core.Fixture, 0, n*(n-1))
	for r := 0; r < rounds; r++ {
		for m := 0; m < n/2; m++ {
			home, away := rot[m], rot[n-1-m]
			if r%2 == 1 {
				home, away = away, home
			}
			fixtures = append(fixtures, newFixture(season, r+1, ids[home], ids[away]))
		}
		last := rot[n-1]
		copy(rot[2:], rot[1:n-1])
		rot[1] = last
	}

	firstLeg := len(fixtures)
	for _, f := range fixtures[:firstLeg] {
		fixtures = append(fixtures, newFixture(season, f.Matchday+rounds, f.AwayID, f.HomeID))
	}

	verifyFixtures(fixtures, ids)
	return fixtures, nil
}

func newFixture(season, matchday int, home, away string) core.Fixture {
	return core.Fixture{
		ID:       uuid.NewString(),
		Season:   season,
		Matchday: matchday,
		HomeID:   home,
		AwayID:   away,
	}
}

// verifyFixtures panics if the schedule breaks the double round robin
// guarantees. A failure here is a scheduler bug.
func verifyFixtures(fixtures []core.Fixture, ids []string) {
	n := len(ids)
	if len(fixtures) != n*(n-1) {
		panic(fmt.Sprintf("league: generated %d fixtures for %d teams, want %d", len(fixtures), n, n*(n-1)))
	}
	pairs := make(map[[2]string]struct{}, len(fixtures))
	perDay := make(map[int]map[string]struct{})
	for _, f := range fixtures {
		if f.HomeID == f.AwayID {
			panic(fmt.Sprintf("league: team %q scheduled against itself", f.HomeID))
		}
		pair := [2]string{f.HomeID, f.AwayID}
		if _, dup := pairs[pair]; dup {
			panic(fmt.Sprintf("league: %s v %s scheduled twice", f.HomeID, f.AwayID))
		}
		pairs[pair] = struct{}{}

		day := perDay[f.Matchday]
		if day == nil {
			day = make(map[string]struct{}, n)
			perDay[f.Matchday] = day
		}
		for _, id := range []string{f.HomeID, f.AwayID} {
			if _, busy := day[id]; busy {
				panic(fmt.Sprintf("league: team %q plays twice on matchday %d", id, f.Matchday))
			}
			day[id] = struct{}{}
		}
	}
	if len(perDay) != 2*(n-1) {
		panic(fmt.Sprintf("league: %d matchdays, want %d", len(perDay), 2*(n-1)))
	}
}

// ShuffleWithinMatchdays orders fixtures by matchday and shuffles the
// fixtures of each matchday among themselves. No fixture ever moves to
// another matchday.
func ShuffleWithinMatchdays(fixtures []core.Fixture, rng Rand) {
	sort.SliceStable(fixtures, func(i, j int) bool {
		return fixtures[i].Matchday < fixtures[j].Matchday
	})
	for start := 0; start < len(fixtures); {
		end := start
		for end < len(fixtures) && fixtures[end].Matchday == fixtures[start].Matchday {
			end++
		}
		group := fixtures[start:end]
		for i := len(group) - 1; i > 0; i-- {
			j := rng.IntN(i + 1)
			group[i], group[j] = group[j], group[i]
		}
		start = end
	}
}
