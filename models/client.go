package models

import (
	"time"
)

const (
	ClientPending  = "pending"
	ClientActive   = "active"
	ClientInactive = "inactive"
)

var ValidClientStatuses = map[string]bool{
	ClientPending:  true,
	ClientActive:   true,
	ClientInactive: true,
}

// Client is an agency customer. Created through onboarding, edited directly afterwards.
type Client struct {
	Base
	Name        string            `gorm:"not null" json:"name"`
	Company     string            `json:"company"`
	Designation string            `json:"designation"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	BirthDate   *time.Time        `json:"birthDate"`
	Website     string            `json:"website"`
	Website2    string            `json:"website2"`
	Website3    string            `json:"website3"`
	Biography   string            `json:"biography"`
	SocialLinks map[string]string `gorm:"serializer:json" json:"socialLinks"`
	PackageID   *string           `gorm:"index;size:64" json:"packageId"`
	Status      string            `gorm:"default:'pending'" json:"status"`
	Progress    int               `gorm:"default:0" json:"progress"`
	StartDate   *time.Time        `json:"startDate"`
	DueDate     *time.Time        `json:"dueDate"`

	// Relations
	Package *Package `gorm:"constraint:OnDelete:SET NULL" json:"package,omitempty"`
}

// ClientTeamMember is an agent working on a client, copied from the assigned
// template's team or added directly.
type ClientTeamMember struct {
	Base
	ClientID     string    `gorm:"not null;uniqueIndex:idx_client_agent;size:64" json:"clientId"`
	AgentID      string    `gorm:"not null;uniqueIndex:idx_client_agent;size:64" json:"agentId"`
	TeamID       *string   `gorm:"index;size:64" json:"teamId"`
	Role         string    `json:"role"`
	AssignedDate time.Time `json:"assignedDate"`
}
