package models

// Package is a sellable bundle that groups templates.
type Package struct {
	Base
	Name        string `gorm:"not null;uniqueIndex;size:191" json:"name"`
	Description string `json:"description"`
	Price       int    `gorm:"default:0" json:"price"` // in cents
	Status      string `gorm:"default:'active'" json:"status"`

	TemplateCount int64 `gorm:"-" json:"templateCount"`
}

// PackageSummary is the trimmed package shape nested in other responses.
type PackageSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
