package season

import (
	"log/slog"
	"sync"

	"github.com/kickoff/matchcore/pkg/core"
)

// Context holds the season and match currently being played. Storage
// backends stamp rows from it and the logger reads it for every record.
type Context struct {
	mu       sync.RWMutex
	info     core.SeasonInfo
	matchday int
	matchID  string
	minute   int
}

// NewContext creates a new Context with default values
func NewContext() *Context {
	return &Context{
		info: core.SeasonInfo{League: "No season loaded"},
	}
}

// Season returns the current season
func (c *Context) Season() core.SeasonInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info
}

// SetSeason sets the current season and clears the matchday and match.
func (c *Context) SetSeason(info core.SeasonInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.info = info
	c.matchday = 0
	c.matchID = ""
	c.minute = 0
}

func (c *Context) Matchday() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.matchday
}

func (c *Context) SetMatchday(md int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matchday = md
}

// Match returns the live match ID and minute, if a match is running.
func (c *Context) Match() (id string, minute int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.matchID, c.minute
}

// SetMatch records the live match. An empty id clears it.
func (c *Context) SetMatch(id string, minute int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matchID = id
	c.minute = minute
}

// Attrs returns the context as log attributes. It satisfies
// logging.ContextProvider.
func (c *Context) Attrs() []slog.Attr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	attrs := make([]slog.Attr, 0, 4)
	if c.info.ID != "" {
		attrs = append(attrs, slog.Int("season", c.info.Number))
	}
	if c.matchday > 0 {
		attrs = append(attrs, slog.Int("matchday", c.matchday))
	}
	if c.matchID != "" {
		attrs = append(attrs, slog.String("match", c.matchID), slog.Int("minute", c.minute))
	}
	return attrs
}
