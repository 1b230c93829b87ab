package models

import (
	"time"
)

type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

var ValidAssignmentStatuses = map[AssignmentStatus]bool{
	AssignmentActive:    true,
	AssignmentCompleted: true,
	AssignmentCancelled: true,
}

// Assignment links one template to one client. The unique index on the pair
// is the authoritative "already assigned" guard.
type Assignment struct {
	Base
	TemplateID string           `gorm:"not null;uniqueIndex:idx_assignment_template_client;size:64" json:"templateId"`
	ClientID   string           `gorm:"not null;uniqueIndex:idx_assignment_template_client;size:64" json:"clientId"`
	AssignedAt time.Time        `json:"assignedAt"`
	Status     AssignmentStatus `gorm:"default:'active'" json:"status"`

	// Relations
	Template *Template `json:"template,omitempty"`
	Client   *Client   `json:"client,omitempty"`

	GeneratedTasks []Task `gorm:"-" json:"generatedTasks,omitempty"`
}
