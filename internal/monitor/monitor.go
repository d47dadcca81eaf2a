package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kickoff/matchcore/internal/influx"
	"github.com/kickoff/matchcore/internal/logging"
	"github.com/kickoff/matchcore/internal/season"
	"github.com/kickoff/matchcore/internal/storage"
	"github.com/kickoff/matchcore/internal/worker"
)

// QueueSource reports per-topic queue lengths. *dispatcher.Dispatcher satisfies it.
type QueueSource interface {
	QueueLengths() map[string]int
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	LogManager    *logging.SlogManager
	SeasonContext *season.Context
	WorkerManager *worker.Manager
	Dispatcher    QueueSource
	Telemetry     worker.PointWriter // optional
	StatusDir     string             // status.json is rewritten here when set
	Interval      time.Duration      // defaults to 1s
}

// Status is one sample of the pipeline backlog.
type Status struct {
	Time                time.Time      `json:"time"`
	Season              int            `json:"season"`
	Matchday            int            `json:"matchday"`
	Match               string         `json:"match,omitempty"`
	Buffers             map[string]int `json:"buffers"`
	WriteQueues         map[string]int `json:"writeQueues,omitempty"`
	LastWriteDurationMs float32        `json:"lastWriteDurationMs"`
}

// Backlog sums the dispatcher buffers.
func (s Status) Backlog() int {
	n := 0
	for _, v := range s.Buffers {
		n += v
	}
	return n
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	if deps.SeasonContext == nil {
		deps.SeasonContext = season.NewContext()
	}
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetProgramStatus returns the current pipeline status.
func (s *Service) GetProgramStatus() Status {
	info := s.deps.SeasonContext.Season()
	matchID, _ := s.deps.SeasonContext.Match()

	st := Status{
		Time:     time.Now(),
		Season:   info.Number,
		Matchday: s.deps.SeasonContext.Matchday(),
		Match:    matchID,
		Buffers:  map[string]int{},
	}
	if s.deps.Dispatcher != nil {
		st.Buffers = s.deps.Dispatcher.QueueLengths()
	}
	if s.deps.WorkerManager != nil {
		st.WriteQueues = s.deps.WorkerManager.QueueLengths()
		st.LastWriteDurationMs = float32(s.deps.WorkerManager.GetLastDBWriteDuration().Milliseconds())
	}
	return st
}

// Record writes one status sample to every configured sink.
func (s *Service) Record(st Status) error {
	logger := s.deps.LogManager.Component("monitor")

	if s.deps.StatusDir != "" {
		if err := writeStatusFile(filepath.Join(s.deps.StatusDir, "status.json"), st); err != nil {
			return err
		}
	}

	if s.deps.Telemetry != nil {
		p := influx.PerformancePoint(st.Backlog(), st.WriteQueues, st.Time)
		if err := s.deps.Telemetry.WritePoint(influx.BucketPerformance, p); err != nil {
			logger.Debug("Telemetry write failed", "error", err)
		}
	}

	if s.deps.WorkerManager != nil {
		if rec, ok := s.deps.WorkerManager.Backend().(storage.PerformanceRecorder); ok {
			if err := rec.RecordPerformance(st.Backlog()); err != nil {
				return fmt.Errorf("write performance sample: %w", err)
			}
		}
	}

	logger.Debug("Status",
		"backlog", st.Backlog(),
		"writeQueues", st.WriteQueues,
		"lastWriteMs", st.LastWriteDurationMs)
	return nil
}

func writeStatusFile(path string, st Status) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write status file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if s.deps.StatusDir != "" {
		if err := os.MkdirAll(s.deps.StatusDir, 0755); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("create status dir: %w", err)
		}
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Component("monitor")
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if s.deps.SeasonContext.Season().ID == "" {
					continue
				}
				if err := s.Record(s.GetProgramStatus()); err != nil {
					logger.Error("Error recording status", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.isRunning = false
	s.mu.Unlock()
	<-done
}
