// Package audit records account activity: registrations, logins, logouts,
// purchases and deletions. Writes happen in the background so that a slow
// or failing audit table never delays a request.
package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/bookstore/internal/entities"
)

// Store persists and reads audit events.
type Store interface {
	LogEvent(event *entities.AuditEvent) error
	GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
	DeleteOldEvents(olderThan time.Time) (int64, error)
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo    Store
	now     func() time.Time
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo Store) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Log records an event synchronously.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("[AUDIT ERROR] user %d %s: %v", event.UserID, event.Action, err)
		}
	}()
}

// Wait blocks until every background write has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) newEvent(userID uint, kind entities.AuditEventType, action string) *entities.AuditEvent {
	return &entities.AuditEvent{
		UserID:    userID,
		EventType: kind,
		Action:    action,
		Status:    entities.AuditStatusSuccess,
		CreatedAt: s.now(),
	}
}

// LogAuth records a registration, login or logout. userID is zero when a
// login names an unknown user.
func (s *Service) LogAuth(userID uint, username, action, ipAddr, userAgent string, success bool) {
	event := s.newEvent(userID, entities.AuditEventAuth, action)
	event.Description = truncate(action+" as "+username, 500)
	event.IPAddress = ipAddr
	event.UserAgent = truncate(userAgent, 500)
	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

type purchaseMetadata struct {
	CartsPurchased  int      `json:"carts_purchased"`
	NotificationIDs []string `json:"notification_ids"`
}

// LogPurchase records a completed purchase with the notification task ids.
func (s *Service) LogPurchase(userID uint, cartsPurchased int, notificationIDs []string) {
	event := s.newEvent(userID, entities.AuditEventPurchase, "purchase")
	event.Description = "Books Purchased"
	event.EntityType = "shopping_cart"

	metadata, err := json.Marshal(purchaseMetadata{CartsPurchased: cartsPurchased, NotificationIDs: notificationIDs})
	if err == nil {
		event.Metadata = string(metadata)
	}
	if len(notificationIDs) < cartsPurchased {
		// Some confirmations never reached the queue
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogDelete records the removal of a catalog entry or cart.
func (s *Service) LogDelete(userID uint, entityType string, entityID uint, ipAddr string) {
	event := s.newEvent(userID, entities.AuditEventDelete, entityType+"_delete")
	event.Description = fmt.Sprintf("Deleted %s %d", entityType, entityID)
	event.EntityType = entityType
	event.EntityID = &entityID
	event.IPAddress = ipAddr
	s.LogAsync(event)
}

// GetEvents retrieves a page of the user's events.
func (s *Service) GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(userID, limit, offset)
}

// DeleteOldEvents removes events older than retention.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(s.now().Add(-retention))
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
