package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"agencyops/models"
	"agencyops/utils"

	"gorm.io/gorm"
)

// ActivityHub fans out new activity entries to websocket subscribers.
type ActivityHub struct {
	mu          sync.Mutex
	subscribers map[chan models.ActivityLog]struct{}
}

func NewActivityHub() *ActivityHub {
	return &ActivityHub{subscribers: make(map[chan models.ActivityLog]struct{})}
}

// Subscribe returns a channel of new entries and a func that releases it.
func (h *ActivityHub) Subscribe() (<-chan models.ActivityLog, func()) {
	ch := make(chan models.ActivityLog, 16)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers entry to every subscriber; slow subscribers miss it.
func (h *ActivityHub) Publish(entry models.ActivityLog) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- entry:
		default:
		}
	}
}

type ActivityService struct {
	db  *gorm.DB
	hub *ActivityHub
}

func NewActivityService(db *gorm.DB, hub *ActivityHub) *ActivityService {
	return &ActivityService{db: db, hub: hub}
}

func (s *ActivityService) Hub() *ActivityHub { return s.hub }

// Record stores an activity entry. Failures are logged, never returned: the
// mutation being audited has already committed.
func (s *ActivityService) Record(ctx context.Context, action models.ActivityAction, entityType, entityID, description string, metadata map[string]interface{}) {
	entry := models.ActivityLog{
		UserID:      ActorFrom(ctx),
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		Metadata:    metadata,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		utils.LogError("activity_record", err, map[string]interface{}{
			"action":      action,
			"entity_type": entityType,
			"entity_id":   entityID,
		})
		return
	}
	utils.LogEvent("activity", map[string]interface{}{
		"action":      action,
		"entity_type": entityType,
		"entity_id":   entityID,
	})
	if s.hub != nil {
		s.hub.Publish(entry)
	}
}

type ActivityFilter struct {
	Action     string
	EntityType string
	UserID     string
	Search     string
	From       *time.Time
	To         *time.Time
	Limit      int
}

// List returns the newest entries first.
func (s *ActivityService) List(ctx context.Context, f ActivityFilter) ([]models.ActivityLog, error) {
	q := s.db.WithContext(ctx).Model(&models.ActivityLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if strings.TrimSpace(f.Search) != "" {
		q = q.Where("LOWER(description) LIKE ?", likePattern(f.Search))
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	entries := []models.ActivityLog{}
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, utils.NewInternalError("Failed to fetch activities", err)
	}
	return entries, nil
}
