package models

import (
	"time"
)

const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// User represents a staff account. Agents are users holding the agent role.
type User struct {
	Base
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null;size:191" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Phone        string     `json:"phone"`
	RoleID       string     `gorm:"not null;index;size:64" json:"roleId"`
	TeamID       *string    `gorm:"index;size:64" json:"teamId"`
	Status       string     `gorm:"default:'active'" json:"status"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`

	// Relations
	Role *Role `json:"role,omitempty"`
	Team *Team `gorm:"constraint:OnDelete:SET NULL" json:"team,omitempty"`
}

// IsActive reports whether the account may log in.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserActive
}

// Summary returns the nested shape used by template and task responses.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the trimmed user shape nested in other responses.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Role is a named set of permissions.
type Role struct {
	Base
	Name        string `gorm:"not null;uniqueIndex;size:191" json:"name"`
	Description string `json:"description"`
	BuiltIn     bool   `gorm:"default:false" json:"builtIn"`

	Permissions []RolePermission `gorm:"foreignKey:RoleID" json:"-"`

	PermissionIDs []string `gorm:"-" json:"permissions"`
}

// RolePermission records that a role holds one permission from the taxonomy.
type RolePermission struct {
	RoleID       string `gorm:"primaryKey;size:64" json:"roleId"`
	PermissionID string `gorm:"primaryKey;size:128" json:"permissionId"`
}

// Grants returns the permission ids held by the role. Admin holds all of them.
func (r *Role) Grants() []string {
	if r.Name == RoleAdmin {
		return AllPermissionIDs()
	}
	ids := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		ids = append(ids, p.PermissionID)
	}
	return ids
}
