package models

import (
	"time"

	"gorm.io/gorm"
)

type ActivityAction string

const (
	ActionCreate       ActivityAction = "create"
	ActionUpdate       ActivityAction = "update"
	ActionDelete       ActivityAction = "delete"
	ActionAssign       ActivityAction = "assign"
	ActionLogin        ActivityAction = "login"
	ActionStatusChange ActivityAction = "status_change"
)

// ActivityActionLabels is the display descriptor for each action.
var ActivityActionLabels = map[ActivityAction]string{
	ActionCreate:       "Created",
	ActionUpdate:       "Updated",
	ActionDelete:       "Deleted",
	ActionAssign:       "Assigned",
	ActionLogin:        "Logged in",
	ActionStatusChange: "Status changed",
}

// ActivityLog is an audit entry written for every mutation.
type ActivityLog struct {
	ID          uint                   `gorm:"primaryKey" json:"id"`
	UserID      *string                `gorm:"index;size:64" json:"userId"`
	Action      ActivityAction         `gorm:"not null;index" json:"action"`
	EntityType  string                 `gorm:"not null;index" json:"entityType"`
	EntityID    string                 `gorm:"index;size:64" json:"entityId"`
	Description string                 `json:"description"`
	Metadata    map[string]interface{} `gorm:"serializer:json" json:"metadata,omitempty"`
	CreatedAt   time.Time              `gorm:"index" json:"createdAt"`

	ActionLabel string `gorm:"-" json:"actionLabel"`
}

func (a *ActivityLog) AfterFind(tx *gorm.DB) error {
	a.ActionLabel = ActivityActionLabels[a.Action]
	return nil
}

func (a *ActivityLog) AfterCreate(tx *gorm.DB) error {
	a.ActionLabel = ActivityActionLabels[a.Action]
	return nil
}
