package audit

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookstore/internal/entities"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Page is a window into a user's activity, newest first.
type Page struct {
	Limit  int
	Offset int
}

// normalized clamps the page into the range the API serves.
func (p Page) normalized() Page {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageSize
	case p.Limit > MaxPageSize:
		p.Limit = MaxPageSize
	}
	p.Offset = max(p.Offset, 0)
	return p
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func ownedBy(userID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// LogEvent stores one event, stamping it with the current time if unset.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("store %s event: %w", event.Action, err)
	}
	return nil
}

// GetEvents returns one page of the user's events and the user's total.
func (r *Repository) GetEvents(userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	page := Page{Limit: limit, Offset: offset}.normalized()

	var total int64
	if err := r.db.Model(&entities.AuditEvent{}).Scopes(ownedBy(userID)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count events of user %d: %w", userID, err)
	}

	events := make([]entities.AuditEvent, 0, page.Limit)
	err := r.db.Scopes(ownedBy(userID)).
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list events of user %d: %w", userID, err)
	}
	return events, total, nil
}

// DeleteOldEvents removes events created before olderThan for every user.
func (r *Repository) DeleteOldEvents(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
