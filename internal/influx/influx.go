package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/kickoff/matchcore/internal/config"
	"github.com/kickoff/matchcore/pkg/core"
	"github.com/rs/zerolog"
)

// Bucket names.
const (
	BucketMatch       = "match_telemetry"
	BucketLeague      = "league_standings"
	BucketPerformance = "matchcore_performance"
)

// DefaultBucketNames are the buckets created on connect.
var DefaultBucketNames = []string{
	BucketMatch,
	BucketLeague,
	BucketPerformance,
}

// ErrDisabled is returned by Connect when telemetry is switched off.
var ErrDisabled = errors.New("influx.enabled is false")

// Manager handles InfluxDB connections and writes.
type Manager struct {
	Client       influxdb2.Client
	Writers      map[string]influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	BucketNames  []string
	Logger       zerolog.Logger
	BackupPath   string

	cfg        config.InfluxConfig
	mu         sync.Mutex
	backupFile *os.File
}

// NewManager creates a new InfluxDB manager. Points are written to a gzip
// line-protocol file under cfg.BackupDir when the server is unreachable.
func NewManager(cfg config.InfluxConfig, log zerolog.Logger) *Manager {
	m := &Manager{
		Writers:     make(map[string]influxdb2_api.WriteAPI),
		BucketNames: DefaultBucketNames,
		Logger:      log,
		cfg:         cfg,
	}
	if cfg.BackupDir != "" {
		m.BackupPath = filepath.Join(cfg.BackupDir, "influx_backup.log.gz")
	}
	return m
}

// Connect establishes a connection to InfluxDB.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(
		fmt.Sprintf("%s://%s:%s", m.cfg.Protocol, m.cfg.Host, m.cfg.Port),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(2500).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.IsValid = false
		if err := m.openBackup(); err != nil {
			return err
		}
		m.Logger.Warn().Str("backupPath", m.BackupPath).
			Msg("InfluxDB unreachable, writing to backup file")
		return nil
	}

	m.IsValid = true
	if err := m.setupOrganizationAndBuckets(ctx); err != nil {
		return err
	}
	m.CreateWriters()
	m.Logger.Info().Msg("InfluxDB client initialized")
	return nil
}

func (m *Manager) openBackup() error {
	if m.BackupWriter != nil {
		return nil
	}
	if m.BackupPath == "" {
		return errors.New("influx backup path not configured")
	}
	if err := os.MkdirAll(filepath.Dir(m.BackupPath), 0755); err != nil {
		return fmt.Errorf("error creating backup dir: %w", err)
	}
	file, err := os.OpenFile(m.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupOrganizationAndBuckets(ctx context.Context) error {
	orgName := m.cfg.Org

	influxOrg, err := m.Client.OrganizationsAPI().FindOrganizationByName(ctx, orgName)
	if err != nil {
		m.Logger.Info().Str("org", orgName).Msg("Organization not found, creating")
		influxOrg, err = m.Client.OrganizationsAPI().CreateOrganizationWithName(ctx, orgName)
		if err != nil {
			m.Logger.Error().Err(err).Str("org", orgName).Msg("Error creating organization")
			return err
		}
	}

	for _, bucket := range m.BucketNames {
		if _, err := m.Client.BucketsAPI().FindBucketByName(ctx, bucket); err == nil {
			continue
		}
		m.Logger.Info().Str("bucket", bucket).Msg("Bucket not found, creating")

		rule := domain.RetentionRuleTypeExpire
		_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, influxOrg, bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: 60 * 60 * 24 * 90, // 90 days
		})
		if err != nil {
			m.Logger.Error().Err(err).Str("bucket", bucket).Msg("Error creating bucket")
			return err
		}
	}

	return nil
}

// CreateWriters creates write APIs for all configured buckets.
func (m *Manager) CreateWriters() {
	for _, bucket := range m.BucketNames {
		w := m.Client.WriteAPI(m.cfg.Org, bucket)
		m.Writers[bucket] = w

		go func(bucketName string, errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", bucketName).
					Msg("Error sending data to InfluxDB")
			}
		}(bucket, w.Errors())
	}

	m.Logger.Debug().Int("buckets", len(m.BucketNames)).Msg("InfluxDB writers initialized")
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(bucket string, point *influxdb2_write.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsValid {
		w, ok := m.Writers[bucket]
		if !ok {
			return fmt.Errorf("influxDB bucket '%s' not registered", bucket)
		}
		w.WritePoint(point)
		return nil
	}

	if m.BackupWriter == nil {
		return errors.New("influxDB client not initialized and backup writer not available")
	}
	line := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	if _, err := m.BackupWriter.Write([]byte(line)); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// Close flushes pending writes and releases the client and backup file.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range m.Writers {
		w.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}

	var errs []error
	if m.BackupWriter != nil {
		errs = append(errs, m.BackupWriter.Close())
		m.BackupWriter = nil
	}
	if m.backupFile != nil {
		errs = append(errs, m.backupFile.Close())
		m.backupFile = nil
	}
	return errors.Join(errs...)
}

// BallSamplePoint converts a ball sample to a telemetry point.
func BallSamplePoint(s core.BallSample, at time.Time) *influxdb2_write.Point {
	b := s.Ball
	return influxdb2.NewPoint(
		"ball",
		map[string]string{
			"match":   s.MatchID,
			"surface": b.Surface.String(),
		},
		map[string]any{
			"tick":     int64(s.Tick),
			"clock":    s.Clock,
			"x":        b.Position.X(),
			"y":        b.Position.Y(),
			"z":        b.Position.Z(),
			"speed":    b.Speed(),
			"spinRate": b.SpinRate(),
			"grounded": b.Grounded,
		},
		at,
	)
}

// GoalPoint converts a goal to a telemetry point.
func GoalPoint(g core.GoalEvent, at time.Time) *influxdb2_write.Point {
	return influxdb2.NewPoint(
		"goal",
		map[string]string{
			"match": g.MatchID,
			"side":  g.Side.String(),
		},
		map[string]any{
			"minute":    g.Minute,
			"homeScore": g.HomeScore,
			"awayScore": g.AwayScore,
		},
		at,
	)
}

// StandingsPoints converts a table snapshot to one point per team.
func StandingsPoints(s core.StandingsSnapshot, at time.Time) []*influxdb2_write.Point {
	points := make([]*influxdb2_write.Point, 0, len(s.Rows))
	for _, row := range s.Rows {
		points = append(points, influxdb2.NewPoint(
			"standing",
			map[string]string{
				"season": s.SeasonID,
				"team":   row.TeamID,
			},
			map[string]any{
				"matchday":       s.Matchday,
				"position":       row.Position,
				"played":         row.Played,
				"points":         row.Points,
				"goalDifference": row.GoalDifference,
				"pointsPerGame":  row.PointsPerGame(),
			},
			at,
		))
	}
	return points
}

// PerformancePoint records writer backlog.
func PerformancePoint(dispatcherBacklog int, queues map[string]int, at time.Time) *influxdb2_write.Point {
	fields := map[string]any{"dispatcherBacklog": dispatcherBacklog}
	for name, n := range queues {
		fields["queue_"+name] = n
	}
	return influxdb2.NewPoint("performance", nil, fields, at)
}
