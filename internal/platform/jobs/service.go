package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	JobDatasetReload = "dataset_reload"
	JobSessionSweep  = "session_sweep"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const defaultHistory = 50

type RunFunc func(context.Context) (any, error)

// Recorder receives one call per finished run.
type Recorder interface {
	JobRun(jobType, status string)
}

type Run struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Details     any        `json:"details,omitempty"`
	Error       string     `json:"error,omitempty"`
}

type job struct {
	Type string
	Run  RunFunc
}

type schedule struct {
	jobType  string
	interval time.Duration
	run      RunFunc
}

// Service runs jobs one at a time on a single worker and keeps the most
// recent runs in memory.
type Service struct {
	recorder  Recorder
	queue     chan job
	schedules []schedule

	mu      sync.Mutex
	runs    []Run
	history int
}

func New(recorder Recorder) *Service {
	return &Service{
		recorder: recorder,
		queue:    make(chan job, 128),
		history:  defaultHistory,
	}
}

// Every registers a periodic job. It must be called before Start; a
// non-positive interval disables the schedule.
func (s *Service) Every(jobType string, interval time.Duration, run RunFunc) {
	if interval <= 0 {
		return
	}
	s.schedules = append(s.schedules, schedule{jobType: jobType, interval: interval, run: run})
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	for _, sc := range s.schedules {
		go s.schedule(ctx, sc)
	}
}

func (s *Service) Enqueue(jobType string, run RunFunc) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run RunFunc) (Run, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

// Runs returns up to limit recorded runs, newest first.
func (s *Service) Runs(limit int) []Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.runs) {
		limit = len(s.runs)
	}
	out := make([]Run, 0, limit)
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[i])
	}
	return out
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) schedule(ctx context.Context, sc schedule) {
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(sc.jobType, sc.run)
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (Run, error) {
	run := Run{ID: uuid.NewString(), Type: j.Type, Status: StatusRunning, StartedAt: time.Now().UTC()}
	s.begin(run)

	details, err := j.Run(ctx)
	completed := time.Now().UTC()
	run.CompletedAt = &completed
	run.Details = details
	run.Status = StatusCompleted
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
	}
	s.finish(run)

	if s.recorder != nil {
		s.recorder.JobRun(run.Type, run.Status)
	}
	slog.Debug("job finished", "jobType", run.Type, "runId", run.ID, "status", run.Status,
		"durationMs", completed.Sub(run.StartedAt).Milliseconds())
	return run, err
}

func (s *Service) begin(run Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	if over := len(s.runs) - s.history; over > 0 {
		s.runs = append([]Run(nil), s.runs[over:]...)
	}
}

func (s *Service) finish(run Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.runs) - 1; i >= 0; i-- {
		if s.runs[i].ID == run.ID {
			s.runs[i] = run
			return
		}
	}
}
