package models

import (
	"time"
)

type TemplateStatus string

const (
	TemplateDraft    TemplateStatus = "draft"
	TemplateActive   TemplateStatus = "active"
	TemplateInactive TemplateStatus = "inactive"
)

// ValidTemplateStatuses is the set of labels a template may carry. Any
// transition between them is allowed.
var ValidTemplateStatuses = map[TemplateStatus]bool{
	TemplateDraft:    true,
	TemplateActive:   true,
	TemplateInactive: true,
}

type AssetType string

const (
	AssetSocialSite AssetType = "social_site"
	AssetWeb2Site   AssetType = "web2_site"
	AssetOther      AssetType = "other_asset"
)

// AssetTypeOrder fixes the display and sort order of asset types.
var AssetTypeOrder = []AssetType{AssetSocialSite, AssetWeb2Site, AssetOther}

// AssetTypeLabels maps each asset type to its human label. The seeded task
// categories use the same labels.
var AssetTypeLabels = map[AssetType]string{
	AssetSocialSite: "Social Site",
	AssetWeb2Site:   "Web 2.0 Site",
	AssetOther:      "Other Asset",
}

// ParseAssetType coerces free-form and legacy type strings (e.g.
// "additional_site") into the fixed enum.
func ParseAssetType(s string) AssetType {
	switch AssetType(s) {
	case AssetSocialSite, AssetWeb2Site, AssetOther:
		return AssetType(s)
	}
	return AssetOther
}

const (
	DefaultPostingFrequency     = 1
	DefaultIdealDurationMinutes = 30
)

// Template is a reusable specification of deliverables and suggested team roles.
type Template struct {
	Base
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Status      TemplateStatus `gorm:"default:'draft'" json:"status"`
	PackageID   string         `gorm:"not null;index;size:64" json:"packageId"`

	// Relations
	Package             *Package             `json:"package,omitempty"`
	SitesAssets         []TemplateSiteAsset  `gorm:"foreignKey:TemplateID" json:"sitesAssets"`
	TemplateTeamMembers []TemplateTeamMember `gorm:"foreignKey:TemplateID" json:"templateTeamMembers"`

	AssetCounts     map[AssetType]int `gorm:"-" json:"assetCounts,omitempty"`
	AssignmentCount int64             `gorm:"-" json:"assignmentCount"`
}

// TemplateSiteAsset is one deliverable within a template.
type TemplateSiteAsset struct {
	ID                          uint      `gorm:"primaryKey" json:"id"`
	TemplateID                  string    `gorm:"not null;index;size:64" json:"templateId"`
	Type                        AssetType `gorm:"not null" json:"type"`
	Name                        string    `gorm:"not null" json:"name"`
	URL                         *string   `json:"url"`
	Description                 *string   `json:"description"`
	IsRequired                  bool      `gorm:"default:false" json:"isRequired"`
	DefaultPostingFrequency     int       `gorm:"not null;default:1" json:"defaultPostingFrequency"`
	DefaultIdealDurationMinutes int       `gorm:"not null;default:30" json:"defaultIdealDurationMinutes"`
	CreatedAt                   time.Time `json:"createdAt"`
	UpdatedAt                   time.Time `json:"updatedAt"`
}

// TemplateTeamMember is a suggested agent and role for a template.
type TemplateTeamMember struct {
	Base
	TemplateID   string    `gorm:"not null;index;size:64" json:"templateId"`
	AgentID      string    `gorm:"not null;index;size:64" json:"agentId"`
	Role         string    `gorm:"not null" json:"role"`
	TeamID       *string   `gorm:"index;size:64" json:"teamId"`
	AssignedDate time.Time `json:"assignedDate"`

	// Relations
	Agent *UserSummary `gorm:"-" json:"agent,omitempty"`
	Team  *TeamSummary `gorm:"-" json:"team,omitempty"`
}
