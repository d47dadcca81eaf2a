package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/kickoff/matchcore/internal/logging"
	"github.com/kickoff/matchcore/internal/season"
	"github.com/kickoff/matchcore/internal/storage"
	"github.com/kickoff/matchcore/pkg/core"
)

// ErrUnexpectedPayload is returned when an event carries the wrong type for its topic.
var ErrUnexpectedPayload = errors.New("unexpected payload")

// PointWriter receives telemetry points. *influx.Manager satisfies it.
type PointWriter interface {
	WritePoint(bucket string, point *influxdb2_write.Point) error
}

// APIClient syncs results with the league backend. *api.Client satisfies it.
type APIClient interface {
	CompleteMatch(ctx context.Context, info core.MatchInfo) error
	Upload(filePath string, meta core.UploadMetadata) error
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	LogManager    *logging.SlogManager
	SeasonContext *season.Context
	Telemetry     PointWriter   // optional
	API           APIClient     // optional
	APITimeout    time.Duration // defaults to 10s
}

// Manager binds dispatcher topics to the storage backend and the optional
// telemetry and API sinks.
type Manager struct {
	deps    Dependencies
	backend storage.Backend
	log     *slog.Logger
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.SeasonContext == nil {
		deps.SeasonContext = season.NewContext()
	}
	if deps.APITimeout <= 0 {
		deps.APITimeout = 10 * time.Second
	}
	return &Manager{
		deps:    deps,
		backend: backend,
		log:     deps.LogManager.Component("worker"),
	}
}

// Backend returns the storage backend events are written to.
func (m *Manager) Backend() storage.Backend {
	return m.backend
}

// DBWriteDurationProvider is an optional interface that backends can implement
// to expose their last DB write duration for monitoring.
type DBWriteDurationProvider interface {
	GetLastDBWriteDuration() time.Duration
}

// GetLastDBWriteDuration returns the duration of the last DB write cycle.
// Returns 0 if the backend doesn't support this metric.
func (m *Manager) GetLastDBWriteDuration() time.Duration {
	if p, ok := m.backend.(DBWriteDurationProvider); ok {
		return p.GetLastDBWriteDuration()
	}
	return 0
}

// QueueLengths returns the backend write queue lengths, if it buffers.
func (m *Manager) QueueLengths() map[string]int {
	if r, ok := m.backend.(storage.QueueReporter); ok {
		return r.QueueLengths()
	}
	return nil
}

func (m *Manager) writePoints(bucket string, points ...*influxdb2_write.Point) {
	if m.deps.Telemetry == nil {
		return
	}
	for _, p := range points {
		if err := m.deps.Telemetry.WritePoint(bucket, p); err != nil {
			m.log.Debug("Telemetry write failed", "bucket", bucket, "error", err)
			return
		}
	}
}
