package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// Maintenance queue names.
const (
	CleanupExpiredTokensQueue = "cleanup_expired_tokens"
	CleanupAuditEventsQueue   = "cleanup_audit_events"
)

// TokenCleaner deletes auth tokens issued before a cutoff.
type TokenCleaner interface {
	DeleteTokensCreatedBefore(cutoff time.Time) (int64, error)
}

// AuditEventCleaner deletes activity events older than a retention window.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupExpiredTokensTask removes auth tokens older than MaxAge.
type CleanupExpiredTokensTask struct {
	MaxAge time.Duration `json:"max_age"`
}

func (t CleanupExpiredTokensTask) Config() backlite.QueueConfig {
	return queueConfig(CleanupExpiredTokensQueue)
}

// CleanupAuditEventsTask removes activity events older than Retention.
type CleanupAuditEventsTask struct {
	Retention time.Duration `json:"retention"`
}

func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return queueConfig(CleanupAuditEventsQueue)
}

// sweep runs one age-based deletion. A non-positive window disables it.
func sweep(what string, window time.Duration, del func() (int64, error)) error {
	if window <= 0 {
		log.Printf("[TASK] %s: no window configured, skipping", what)
		return nil
	}
	deleted, err := del()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	log.Printf("[TASK] %s: removed %d rows older than %s", what, deleted, window)
	return nil
}

func CleanupExpiredTokensProcessor(cleaner TokenCleaner) backlite.QueueProcessor[CleanupExpiredTokensTask] {
	return func(ctx context.Context, task CleanupExpiredTokensTask) error {
		if cleaner == nil {
			return errors.New("token cleaner not configured")
		}
		return sweep("cleanup expired tokens", task.MaxAge, func() (int64, error) {
			return cleaner.DeleteTokensCreatedBefore(time.Now().Add(-task.MaxAge))
		})
	}
}

func CleanupAuditEventsProcessor(cleaner AuditEventCleaner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return errors.New("audit event cleaner not configured")
		}
		return sweep("cleanup audit events", task.Retention, func() (int64, error) {
			return cleaner.DeleteOldEvents(task.Retention)
		})
	}
}

func NewCleanupExpiredTokensQueue(cleaner TokenCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupExpiredTokensProcessor(cleaner))
}

func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner))
}
