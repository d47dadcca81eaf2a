package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"text/tabwriter"

	"github.com/kickoff/matchcore/internal/config"
	"github.com/kickoff/matchcore/internal/league"
	"github.com/kickoff/matchcore/internal/season"
	"github.com/kickoff/matchcore/pkg/core"
)

var errNoTeams = errors.New("no teams configured under league.teams")

// newRand returns a PCG source for seed, drawing a seed when it is zero.
func newRand(seed uint64) (*rand.Rand, uint64) {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), seed
}

// newSeason builds the first season to play. Fixtures are shuffled within
// matchdays only when shuffle is set; results are always simulated from rng.
func newSeason(name string, number int, teams []core.Team, shuffle bool, rng league.Rand) (*league.Season, error) {
	if len(teams) == 0 {
		return nil, errNoTeams
	}
	if shuffle {
		return league.NewSeason(name, number, teams, rng)
	}
	s, err := league.NewSeason(name, number, teams, nil)
	if err != nil {
		return nil, err
	}
	s.SetRand(rng)
	return s, nil
}

func runSeason(ctx context.Context, args []string) error {
	lc := config.GetLeagueConfig()

	fs := flag.NewFlagSet("season", flag.ContinueOnError)
	seed := fs.Uint64("seed", lc.Seed, "random seed, 0 draws one")
	number := fs.Int("number", lc.Season, "number of the first season")
	count := fs.Int("count", 1, "consecutive seasons to play")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	rng, usedSeed := newRand(*seed)
	s, err := newSeason(lc.Name, *number, lc.Teams, lc.Shuffle, rng)
	if err != nil {
		return err
	}
	Logger.Info("Generated season", "league", lc.Name, "season", *number, "teams", len(lc.Teams), "seed", usedSeed)

	svc, err := startServices(ctx, lc.Name)
	if err != nil {
		return err
	}
	defer svc.stop()

	runner := season.NewRunner(svc.dispatcher, SeasonContext, SlogManager.Component("season"), nil)
	for i := 0; i < *count; i++ {
		summary, err := runner.Run(ctx, s)
		if err != nil {
			return fmt.Errorf("season %d: %w", s.Number(), err)
		}
		printSummary(os.Stdout, lc.Name, s, summary)

		if i+1 < *count {
			if s, err = s.Next(); err != nil {
				return err
			}
		}
	}
	return nil
}

// printSummary writes the final table of s in the usual league layout.
func printSummary(w io.Writer, name string, s *league.Season, summary core.SeasonSummary) {
	fmt.Fprintf(w, "%s, season %d\n\n", name, summary.Number)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Pos\tTeam\tP\tW\tD\tL\tGF\tGA\tGD\tPts\t")
	for _, r := range summary.Table {
		team := r.TeamID
		if t, ok := s.Team(r.TeamID); ok && t.Name != "" {
			team = t.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%+d\t%d\t\n",
			r.Position, team, r.Played, r.Won, r.Drawn, r.Lost,
			r.GoalsFor, r.GoalsAgainst, r.GoalDifference, r.Points)
	}
	_ = tw.Flush()

	champion := summary.ChampionID
	if t, ok := s.Team(champion); ok && t.Name != "" {
		champion = t.Name
	}
	fmt.Fprintf(w, "\nChampion: %s. %d matches, %.2f goals per match.\n\n",
		champion, summary.Matches, summary.AverageGoalsPerMatch)
}
