package models

// Team groups agents. Template and client team-member rows may reference it.
type Team struct {
	Base
	Name        string `gorm:"not null;uniqueIndex;size:191" json:"name"`
	Description string `json:"description"`

	// Computed on list
	MemberCount int64 `gorm:"-" json:"memberCount"`
	AgentCount  int64 `gorm:"-" json:"agentCount"`
}

// TeamSummary is the trimmed team shape nested in other responses.
type TeamSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
