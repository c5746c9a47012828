package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// Scheduler runs background attendance jobs on fixed intervals. Each job gets
// its own goroutine and ticker; a panic in one job never takes down another.
type Scheduler struct {
	mu     sync.Mutex
	jobs   []job
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// AddJob registers a job. Jobs added after Start are not picked up.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job{name: name, interval: interval, run: fn})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// Start launches every registered job. Each job fires once immediately, then
// on its interval until Stop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for _, j := range s.jobs {
		s.wg.Add(1)
		go func(j job) {
			defer s.wg.Done()

			ticker := time.NewTicker(j.interval)
			defer ticker.Stop()

			s.execute(ctx, j)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s.execute(ctx, j)
				}
			}
		}(j)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) execute(ctx context.Context, j job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Cron job panicked", "name", j.name, "panic", r)
		}
	}()

	start := time.Now()
	if err := j.run(ctx); err != nil {
		slog.Error("Cron job failed", "name", j.name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Cron job completed", "name", j.name, "duration", time.Since(start))
}

// RunOnce executes every registered job a single time on the caller's
// context. Used by tests and one-shot maintenance runs.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		s.execute(ctx, j)
	}
}
