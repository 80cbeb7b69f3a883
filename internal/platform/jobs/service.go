package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"flexipayslip/internal/platform/config"
)

const JobDraftExpiry = "draft_expiry"

// Purger removes drafts idle for longer than ttl.
type Purger interface {
	PurgeIdle(ctx context.Context, ttl time.Duration) (int64, error)
}

// Recorder receives job outcomes; the metrics collector satisfies it.
type Recorder interface {
	RecordJob(job, status string)
	RecordPurged(n int64)
}

type Service struct {
	Drafts  Purger
	Cfg     config.Config
	Metrics Recorder
	Logger  *slog.Logger
	queue   chan job
	wg      sync.WaitGroup
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(drafts Purger, cfg config.Config, metrics Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Drafts:  drafts,
		Cfg:     cfg,
		Metrics: metrics,
		Logger:  logger,
		queue:   make(chan job, 16),
	}
}

// Start runs the worker and the expiry schedule until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.worker(ctx)
	}()
	if s.Cfg.DraftSweepInterval > 0 && s.Cfg.DraftTTL > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.scheduleExpiry(ctx, s.Cfg.DraftSweepInterval)
		}()
	}
}

// Wait blocks until the goroutines started by Start have returned.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		s.Logger.Warn("job queue full", "jobType", jobType)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				s.Logger.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	started := time.Now()
	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	if s.Metrics != nil {
		s.Metrics.RecordJob(j.Type, status)
	}
	s.Logger.Info("job run", "jobType", j.Type, "status", status, "details", details, "took", time.Since(started))
	return details, err
}

// ExpireDrafts is the unit of work the schedule enqueues.
func (s *Service) ExpireDrafts(ctx context.Context) (any, error) {
	purged, err := s.Drafts.PurgeIdle(ctx, s.Cfg.DraftTTL)
	if err != nil {
		return nil, err
	}
	if s.Metrics != nil {
		s.Metrics.RecordPurged(purged)
	}
	return map[string]any{
		"ttl":    s.Cfg.DraftTTL.String(),
		"purged": purged,
	}, nil
}

func (s *Service) scheduleExpiry(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Enqueue(JobDraftExpiry, s.ExpireDrafts)
		}
	}
}
