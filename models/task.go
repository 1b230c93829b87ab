package models

import (
	"time"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// TaskPriorityRank orders priorities; higher is more urgent.
var TaskPriorityRank = map[TaskPriority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskOverdue    TaskStatus = "overdue"
	TaskCancelled  TaskStatus = "cancelled"
)

var ValidTaskStatuses = map[TaskStatus]bool{
	TaskPending:    true,
	TaskInProgress: true,
	TaskCompleted:  true,
	TaskOverdue:    true,
	TaskCancelled:  true,
}

// Task is a unit of work for a client, usually generated from a required site asset.
type Task struct {
	Base
	Name                 string       `gorm:"not null" json:"name"`
	Description          string       `json:"description"`
	ClientID             string       `gorm:"not null;index;size:64" json:"clientId"`
	TemplateSiteAssetID  *uint        `gorm:"index" json:"templateSiteAssetId"`
	AssignedTo           *string      `gorm:"index;size:64" json:"assignedTo"`
	Priority             TaskPriority `gorm:"default:'medium'" json:"priority"`
	Status               TaskStatus   `gorm:"default:'pending';index" json:"status"`
	DueDate              *time.Time   `json:"dueDate"`
	CategoryID           *string      `gorm:"index;size:64" json:"categoryId"`
	PostingFrequency     int          `gorm:"default:1" json:"postingFrequency"`
	IdealDurationMinutes int          `gorm:"default:30" json:"idealDurationMinutes"`
	NotifiedAt           *time.Time   `json:"notifiedAt,omitempty"`
	CompletedAt          *time.Time   `json:"completedAt,omitempty"`

	// Relations
	Client            *Client            `json:"client,omitempty"`
	TemplateSiteAsset *TemplateSiteAsset `gorm:"constraint:OnDelete:SET NULL" json:"templateSiteAsset,omitempty"`
	Assignee          *User              `gorm:"foreignKey:AssignedTo;constraint:OnDelete:SET NULL" json:"assignee,omitempty"`
	Category          *TaskCategory      `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
}

// TaskCategory groups tasks.
type TaskCategory struct {
	Base
	Name        string `gorm:"not null;uniqueIndex;size:191" json:"name"`
	Description string `json:"description"`
}
