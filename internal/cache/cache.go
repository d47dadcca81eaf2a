package cache

import (
	"slices"
	"sync"

	"github.com/kickoff/matchcore/pkg/core"
)

// TeamCache holds the teams of the running season so handlers can resolve
// team IDs without a database read.
type TeamCache struct {
	m     sync.RWMutex
	teams map[string]core.Team
}

func NewTeamCache() *TeamCache {
	return &TeamCache{teams: make(map[string]core.Team)}
}

// Reset drops every cached team.
func (c *TeamCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.teams = make(map[string]core.Team)
}

func (c *TeamCache) Add(teams ...core.Team) {
	c.m.Lock()
	defer c.m.Unlock()
	for _, t := range teams {
		c.teams[t.ID] = t
	}
}

func (c *TeamCache) Get(id string) (core.Team, bool) {
	c.m.RLock()
	defer c.m.RUnlock()
	t, ok := c.teams[id]
	return t, ok
}

// Name returns the team's name, or the ID itself when the team is unknown.
func (c *TeamCache) Name(id string) string {
	if t, ok := c.Get(id); ok {
		return t.Name
	}
	return id
}

// All returns the cached teams ordered by ID.
func (c *TeamCache) All() []core.Team {
	c.m.RLock()
	defer c.m.RUnlock()
	out := make([]core.Team, 0, len(c.teams))
	for _, t := range c.teams {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b core.Team) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

func (c *TeamCache) Len() int {
	c.m.RLock()
	defer c.m.RUnlock()
	return len(c.teams)
}
