package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookstore/internal/tasks"
)

// Enqueuer persists a task for the background workers.
type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// Job is one maintenance task enqueued on every tick.
type Job struct {
	Name string
	Task backlite.Task
}

// TokenCleanupJob purges tokens older than maxAge. It returns false when
// tokens never expire.
func TokenCleanupJob(maxAge time.Duration) (Job, bool) {
	return Job{Name: "token cleanup", Task: tasks.CleanupExpiredTokensTask{MaxAge: maxAge}}, maxAge > 0
}

// AuditCleanupJob purges audit events older than retention. It returns
// false when events are kept forever.
func AuditCleanupJob(retention time.Duration) (Job, bool) {
	return Job{Name: "audit cleanup", Task: tasks.CleanupAuditEventsTask{Retention: retention}}, retention > 0
}

// MaintenanceScheduler periodically enqueues housekeeping tasks.
type MaintenanceScheduler struct {
	queue    Enqueuer
	schedule string
	jobs     []Job

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewMaintenanceScheduler creates a scheduler instance. Without jobs it
// never starts.
func NewMaintenanceScheduler(queue Enqueuer, schedule string, jobs ...Job) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		queue:    queue,
		schedule: schedule,
		jobs:     jobs,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// Start registers the cron entry and begins the loop. It stops when ctx is done.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if len(s.jobs) == 0 {
		log.Printf("[SCHEDULER] Maintenance: disabled (nothing to clean up)")
		return nil
	}
	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.RunNow()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	if next := s.nextRunLocked(); next != nil {
		log.Printf("[SCHEDULER] Maintenance: started with schedule '%s' (%d jobs). Next run: %v", s.schedule, len(s.jobs), *next)
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops accepting new runs and waits for a running one.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false

	log.Printf("[SCHEDULER] Maintenance: stopped")
}

// RunNow enqueues every job immediately. A failing job does not keep the
// others from being enqueued.
func (s *MaintenanceScheduler) RunNow() ([]string, error) {
	var ids []string
	var errs []error
	for _, job := range s.jobs {
		id, err := s.queue.Enqueue(job.Task)
		if err != nil {
			log.Printf("[SCHEDULER] Maintenance: failed to enqueue %s: %v", job.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", job.Name, err))
			continue
		}
		log.Printf("[SCHEDULER] Maintenance: enqueued %s as task %s", job.Name, id)
		ids = append(ids, id)
	}
	return ids, errors.Join(errs...)
}

// IsRunning returns whether the scheduler is active.
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the jobs will next be enqueued.
func (s *MaintenanceScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextRunLocked()
}

func (s *MaintenanceScheduler) nextRunLocked() *time.Time {
	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}
