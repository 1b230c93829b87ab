package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agencyops/models"
	"agencyops/utils"

	"gorm.io/gorm"
)

// SiteAssetInput is a submitted site asset before normalization.
type SiteAssetInput struct {
	Type                        string  `json:"type"`
	Name                        string  `json:"name"`
	URL                         *string `json:"url"`
	Description                 *string `json:"description"`
	IsRequired                  bool    `json:"isRequired"`
	DefaultPostingFrequency     *int    `json:"defaultPostingFrequency"`
	DefaultIdealDurationMinutes *int    `json:"defaultIdealDurationMinutes"`
}

type TeamMemberInput struct {
	AgentID string  `json:"agentId"`
	Role    string  `json:"role"`
	TeamID  *string `json:"teamId"`
}

// TemplateInput is the create/update payload. Older clients send
// "siteAssets" instead of "sitesAssets"; both are accepted.
type TemplateInput struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	PackageID   string            `json:"packageId"`
	Status      string            `json:"status"`
	SitesAssets []SiteAssetInput  `json:"sitesAssets"`
	SiteAssets  []SiteAssetInput  `json:"siteAssets"`
	TeamMembers []TeamMemberInput `json:"teamMembers"`
}

func (in TemplateInput) assets() []SiteAssetInput {
	if in.SitesAssets != nil {
		return in.SitesAssets
	}
	return in.SiteAssets
}

type TemplateFilter struct {
	Search    string
	PackageID string
	Status    string
}

// NormalizeSiteAssets applies the stored-asset rules: the type is coerced into
// the fixed enum, names are trimmed and blank ones dropped, and the numeric
// defaults are filled and clamped to at least 1.
func NormalizeSiteAssets(inputs []SiteAssetInput) []models.TemplateSiteAsset {
	assets := make([]models.TemplateSiteAsset, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			continue
		}
		assets = append(assets, models.TemplateSiteAsset{
			Type:                        models.ParseAssetType(strings.TrimSpace(in.Type)),
			Name:                        name,
			URL:                         utils.TrimPtr(in.URL),
			Description:                 utils.TrimPtr(in.Description),
			IsRequired:                  in.IsRequired,
			DefaultPostingFrequency:     clampPositive(in.DefaultPostingFrequency, models.DefaultPostingFrequency),
			DefaultIdealDurationMinutes: clampPositive(in.DefaultIdealDurationMinutes, models.DefaultIdealDurationMinutes),
		})
	}
	return assets
}

// clampPositive returns def for absent or zero values and clamps the rest to >= 1.
func clampPositive(v *int, def int) int {
	if v == nil || *v == 0 {
		return def
	}
	if *v < 1 {
		return 1
	}
	return *v
}

type TemplateService struct {
	db       *gorm.DB
	activity *ActivityService
}

func NewTemplateService(db *gorm.DB, activity *ActivityService) *TemplateService {
	return &TemplateService{db: db, activity: activity}
}

// List returns templates with their package, asset-type counts and
// assignment counts. There is no pagination.
func (s *TemplateService) List(ctx context.Context, f TemplateFilter) ([]models.Template, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Template{}).
		Preload("Package").
		Preload("SitesAssets", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") })

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := likePattern(search)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if f.PackageID != "" {
		q = q.Where("package_id = ?", f.PackageID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	templates := []models.Template{}
	if err := q.Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, utils.NewInternalError("Failed to fetch templates", err)
	}

	var counts []struct {
		TemplateID string
		Count      int64
	}
	if err := db.Model(&models.Assignment{}).
		Select("template_id, COUNT(*) AS count").
		Group("template_id").
		Scan(&counts).Error; err != nil {
		return nil, utils.NewInternalError("Failed to count assignments", err)
	}
	byTemplate := make(map[string]int64, len(counts))
	for _, c := range counts {
		byTemplate[c.TemplateID] = c.Count
	}

	for i := range templates {
		t := &templates[i]
		t.AssetCounts = make(map[models.AssetType]int, len(models.AssetTypeOrder))
		for _, typ := range models.AssetTypeOrder {
			t.AssetCounts[typ] = 0
		}
		for _, a := range t.SitesAssets {
			t.AssetCounts[a.Type]++
		}
		t.AssignmentCount = byTemplate[t.ID]
		if t.TemplateTeamMembers == nil {
			t.TemplateTeamMembers = []models.TemplateTeamMember{}
		}
	}
	return templates, nil
}

// Get returns the template with its assets, team members (with agent and
// team summaries), package and assignment count.
func (s *TemplateService) Get(ctx context.Context, id string) (*models.Template, error) {
	db := s.db.WithContext(ctx)

	var t models.Template
	err := db.Preload("Package").
		Preload("SitesAssets", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("TemplateTeamMembers", func(tx *gorm.DB) *gorm.DB { return tx.Order("assigned_date, id") }).
		First(&t, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("Template not found")
		}
		return nil, utils.NewInternalError("Failed to fetch template", err)
	}

	if err := hydrateTeamMembers(db, t.TemplateTeamMembers); err != nil {
		return nil, utils.NewInternalError("Failed to fetch template team", err)
	}
	if err := db.Model(&models.Assignment{}).Where("template_id = ?", t.ID).Count(&t.AssignmentCount).Error; err != nil {
		return nil, utils.NewInternalError("Failed to count assignments", err)
	}
	if t.SitesAssets == nil {
		t.SitesAssets = []models.TemplateSiteAsset{}
	}
	if t.TemplateTeamMembers == nil {
		t.TemplateTeamMembers = []models.TemplateTeamMember{}
	}
	return &t, nil
}

func hydrateTeamMembers(db *gorm.DB, members []models.TemplateTeamMember) error {
	if len(members) == 0 {
		return nil
	}
	agentIDs := make([]string, 0, len(members))
	var teamIDs []string
	for _, m := range members {
		agentIDs = append(agentIDs, m.AgentID)
		if m.TeamID != nil {
			teamIDs = append(teamIDs, *m.TeamID)
		}
	}

	var agents []models.User
	if err := db.Where("id IN ?", agentIDs).Find(&agents).Error; err != nil {
		return err
	}
	agentByID := make(map[string]*models.UserSummary, len(agents))
	for i := range agents {
		agentByID[agents[i].ID] = agents[i].Summary()
	}

	teamByID := map[string]*models.TeamSummary{}
	if len(teamIDs) > 0 {
		var teams []models.Team
		if err := db.Where("id IN ?", teamIDs).Find(&teams).Error; err != nil {
			return err
		}
		for _, team := range teams {
			teamByID[team.ID] = &models.TeamSummary{ID: team.ID, Name: team.Name}
		}
	}

	for i := range members {
		members[i].Agent = agentByID[members[i].AgentID]
		if members[i].TeamID != nil {
			members[i].Team = teamByID[*members[i].TeamID]
		}
	}
	return nil
}

func validateTemplateInput(in *TemplateInput) (models.TemplateStatus, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.PackageID = strings.TrimSpace(in.PackageID)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" || in.PackageID == "" {
		return "", utils.NewValidationError("Name and package are required")
	}
	status := models.TemplateStatus(strings.TrimSpace(in.Status))
	if status != "" && !models.ValidTemplateStatuses[status] {
		return "", utils.NewValidationError("Invalid template status %q", in.Status)
	}
	return status, nil
}

// buildTeamMembers validates submitted members against the store.
func buildTeamMembers(tx *gorm.DB, inputs []TeamMemberInput, now time.Time) ([]models.TemplateTeamMember, error) {
	members := make([]models.TemplateTeamMember, 0, len(inputs))
	for i, in := range inputs {
		agentID := strings.TrimSpace(in.AgentID)
		role := strings.TrimSpace(in.Role)
		if agentID == "" || role == "" {
			return nil, utils.NewValidationError("Team member %d requires an agent and a role", i+1)
		}
		ok, err := exists(tx, &models.User{}, agentID)
		if err != nil {
			return nil, utils.NewInternalError("Failed to check agent", err)
		}
		if !ok {
			return nil, utils.NewValidationError("Agent %s does not exist", agentID)
		}
		teamID := optionalID(in.TeamID)
		if teamID != nil {
			ok, err := exists(tx, &models.Team{}, *teamID)
			if err != nil {
				return nil, utils.NewInternalError("Failed to check team", err)
			}
			if !ok {
				return nil, utils.NewValidationError("Team %s does not exist", *teamID)
			}
		}
		members = append(members, models.TemplateTeamMember{
			AgentID:      agentID,
			Role:         role,
			TeamID:       teamID,
			AssignedDate: now,
		})
	}
	return members, nil
}

// insertChildren writes the asset and member rows for templateID.
func insertChildren(tx *gorm.DB, templateID string, assets []models.TemplateSiteAsset, members []models.TemplateTeamMember) error {
	for i := range assets {
		assets[i].TemplateID = templateID
	}
	for i := range members {
		members[i].TemplateID = templateID
	}
	if len(assets) > 0 {
		if err := tx.Create(&assets).Error; err != nil {
			return utils.NewInternalError("Failed to save site assets", err)
		}
	}
	if len(members) > 0 {
		if err := tx.Create(&members).Error; err != nil {
			return utils.NewInternalError("Failed to save team members", err)
		}
	}
	return nil
}

// unlinkTasks clears task references to the template's current assets so the
// asset rows can be removed.
func unlinkTasks(tx *gorm.DB, templateID string) error {
	assetIDs := tx.Model(&models.TemplateSiteAsset{}).Select("id").Where("template_id = ?", templateID)
	return tx.Model(&models.Task{}).
		Where("template_site_asset_id IN (?)", assetIDs).
		Update("template_site_asset_id", nil).Error
}

func requirePackage(tx *gorm.DB, packageID string) error {
	ok, err := exists(tx, &models.Package{}, packageID)
	if err != nil {
		return utils.NewInternalError("Failed to check package", err)
	}
	if !ok {
		return utils.NewNotFoundError("Package not found")
	}
	return nil
}

// Create persists a template with all of its children in one transaction.
func (s *TemplateService) Create(ctx context.Context, in TemplateInput) (*models.Template, error) {
	status, err := validateTemplateInput(&in)
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = models.TemplateDraft
	}

	template := models.Template{
		Name:        in.Name,
		Description: in.Description,
		Status:      status,
		PackageID:   in.PackageID,
	}
	assets := NormalizeSiteAssets(in.assets())

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePackage(tx, in.PackageID); err != nil {
			return err
		}
		members, err := buildTeamMembers(tx, in.TeamMembers, time.Now())
		if err != nil {
			return err
		}
		if err := tx.Create(&template).Error; err != nil {
			return utils.NewInternalError("Failed to create template", err)
		}
		return insertChildren(tx, template.ID, assets, members)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActionCreate, "template", template.ID,
		fmt.Sprintf("Created template %s", template.Name),
		map[string]interface{}{"packageId": template.PackageID, "assets": len(assets)})
	return s.Get(ctx, template.ID)
}

// Update replaces the template's scalar fields and its entire asset and
// team-member collections. Old children are deleted and the submitted ones
// inserted inside one transaction, so repeating the same update converges on
// the same content.
func (s *TemplateService) Update(ctx context.Context, id string, in TemplateInput) (*models.Template, error) {
	status, err := validateTemplateInput(&in)
	if err != nil {
		return nil, err
	}
	assets := NormalizeSiteAssets(in.assets())

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var template models.Template
		if err := findOr(tx, &template, id, "Template"); err != nil {
			return err
		}
		if err := requirePackage(tx, in.PackageID); err != nil {
			return err
		}
		members, err := buildTeamMembers(tx, in.TeamMembers, time.Now())
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":        in.Name,
			"description": in.Description,
			"package_id":  in.PackageID,
		}
		if status != "" {
			updates["status"] = status
		}
		if err := tx.Model(&template).Updates(updates).Error; err != nil {
			return utils.NewInternalError("Failed to update template", err)
		}

		if err := unlinkTasks(tx, id); err != nil {
			return utils.NewInternalError("Failed to unlink tasks", err)
		}
		if err := tx.Where("template_id = ?", id).Delete(&models.TemplateSiteAsset{}).Error; err != nil {
			return utils.NewInternalError("Failed to replace site assets", err)
		}
		if err := tx.Where("template_id = ?", id).Delete(&models.TemplateTeamMember{}).Error; err != nil {
			return utils.NewInternalError("Failed to replace team members", err)
		}
		return insertChildren(tx, id, assets, members)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActionUpdate, "template", id,
		fmt.Sprintf("Updated template %s", in.Name),
		map[string]interface{}{"assets": len(assets), "teamMembers": len(in.TeamMembers)})
	return s.Get(ctx, id)
}

// Delete removes the template together with its assets, team members and
// assignments.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	db := s.db.WithContext(ctx)

	var template models.Template
	if err := findOr(db, &template, id, "Template"); err != nil {
		return err
	}

	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := unlinkTasks(tx, id); err != nil {
		tx.Rollback()
		return utils.NewInternalError("Failed to unlink tasks", err)
	}

	// Delete in proper order to respect foreign keys
	children := []interface{}{
		&models.TemplateSiteAsset{},
		&models.TemplateTeamMember{},
		&models.Assignment{},
	}
	for _, child := range children {
		if err := tx.Where("template_id = ?", id).Delete(child).Error; err != nil {
			tx.Rollback()
			return utils.NewInternalError("Failed to delete template dependencies", err)
		}
	}

	res := tx.Where("id = ?", id).Delete(&models.Template{})
	if res.Error != nil {
		tx.Rollback()
		return utils.NewInternalError("Failed to delete template", res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return utils.NewNotFoundError("Template not found")
	}

	if err := tx.Commit().Error; err != nil {
		return utils.NewInternalError("Failed to complete deletion", err)
	}

	s.activity.Record(ctx, models.ActionDelete, "template", id,
		fmt.Sprintf("Deleted template %s", template.Name), nil)
	return nil
}
