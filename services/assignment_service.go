package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agencyops/models"
	"agencyops/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentInput struct {
	ID         string     `json:"id"`
	TemplateID string     `json:"templateId"`
	ClientID   string     `json:"clientId"`
	AssignedAt *time.Time `json:"assignedAt"`
	Status     string     `json:"status"`
}

type AssignmentFilter struct {
	TemplateID string
	ClientID   string
	Status     string
}

type AssignmentService struct {
	db       *gorm.DB
	activity *ActivityService
	dueDays  int
	now      func() time.Time
}

func NewAssignmentService(db *gorm.DB, activity *ActivityService, dueDays int) *AssignmentService {
	if dueDays < 1 {
		dueDays = 7
	}
	return &AssignmentService{db: db, activity: activity, dueDays: dueDays, now: time.Now}
}

// GenerateTasks derives one pending task per required site asset. Assignees
// rotate over the template's team members in order; without members the
// tasks are left unassigned.
func GenerateTasks(t *models.Template, clientID string, assignedAt time.Time, dueDays int, categories map[models.AssetType]string) []models.Task {
	due := assignedAt.AddDate(0, 0, dueDays)
	var tasks []models.Task
	for _, asset := range t.SitesAssets {
		if !asset.IsRequired {
			continue
		}
		assetID := asset.ID
		dueDate := due
		task := models.Task{
			Name:                 asset.Name,
			ClientID:             clientID,
			TemplateSiteAssetID:  &assetID,
			Priority:             models.PriorityMedium,
			Status:               models.TaskPending,
			DueDate:              &dueDate,
			PostingFrequency:     asset.DefaultPostingFrequency,
			IdealDurationMinutes: asset.DefaultIdealDurationMinutes,
		}
		if asset.Description != nil {
			task.Description = *asset.Description
		}
		if len(t.TemplateTeamMembers) > 0 {
			agentID := t.TemplateTeamMembers[len(tasks)%len(t.TemplateTeamMembers)].AgentID
			task.AssignedTo = &agentID
		}
		if id, ok := categories[asset.Type]; ok {
			categoryID := id
			task.CategoryID = &categoryID
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func assetCategories(tx *gorm.DB) (map[models.AssetType]string, error) {
	labels := make([]string, 0, len(models.AssetTypeLabels))
	byLabel := make(map[string]models.AssetType, len(models.AssetTypeLabels))
	for typ, label := range models.AssetTypeLabels {
		labels = append(labels, label)
		byLabel[label] = typ
	}
	var categories []models.TaskCategory
	if err := tx.Where("name IN ?", labels).Find(&categories).Error; err != nil {
		return nil, err
	}
	out := make(map[models.AssetType]string, len(categories))
	for _, c := range categories {
		out[byLabel[c.Name]] = c.ID
	}
	return out, nil
}

func loadAssignableTemplate(tx *gorm.DB, id string, t *models.Template) error {
	err := tx.Preload("SitesAssets", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("TemplateTeamMembers", func(db *gorm.DB) *gorm.DB { return db.Order("assigned_date, id") }).
		First(t, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return utils.NewNotFoundError("Template not found")
		}
		return utils.NewInternalError("Failed to load template", err)
	}
	return nil
}

// generateFor inserts the tasks for t's required assets, skipping assets
// that already have a task for the client that was not cancelled.
func (s *AssignmentService) generateFor(tx *gorm.DB, t *models.Template, clientID string, assignedAt time.Time) ([]models.Task, error) {
	categories, err := assetCategories(tx)
	if err != nil {
		return nil, utils.NewInternalError("Failed to load task categories", err)
	}
	var covered []uint
	err = tx.Model(&models.Task{}).
		Where("client_id = ? AND status <> ? AND template_site_asset_id IN (?)", clientID, models.TaskCancelled,
			tx.Model(&models.TemplateSiteAsset{}).Select("id").Where("template_id = ?", t.ID)).
		Pluck("template_site_asset_id", &covered).Error
	if err != nil {
		return nil, utils.NewInternalError("Failed to load existing tasks", err)
	}
	skip := make(map[uint]bool, len(covered))
	for _, id := range covered {
		skip[id] = true
	}

	var tasks []models.Task
	for _, task := range GenerateTasks(t, clientID, assignedAt, s.dueDays, categories) {
		if !skip[*task.TemplateSiteAssetID] {
			tasks = append(tasks, task)
		}
	}
	if len(tasks) > 0 {
		if err := tx.Omit(clause.Associations).Create(&tasks).Error; err != nil {
			return nil, utils.NewInternalError("Failed to generate tasks", err)
		}
	}
	return tasks, nil
}

func cancelPendingTasks(tx *gorm.DB, a *models.Assignment) error {
	assetIDs := tx.Model(&models.TemplateSiteAsset{}).Select("id").Where("template_id = ?", a.TemplateID)
	err := tx.Model(&models.Task{}).
		Where("client_id = ? AND status = ? AND template_site_asset_id IN (?)", a.ClientID, models.TaskPending, assetIDs).
		Update("status", models.TaskCancelled).Error
	if err != nil {
		return utils.NewInternalError("Failed to cancel tasks", err)
	}
	return nil
}

// Create links a template to a client. The unique (template, client) index
// decides whether the pair is already assigned. Tasks for the template's
// required assets are generated and its team copied onto the client in the
// same transaction.
func (s *AssignmentService) Create(ctx context.Context, in AssignmentInput) (*models.Assignment, error) {
	in.TemplateID = strings.TrimSpace(in.TemplateID)
	in.ClientID = strings.TrimSpace(in.ClientID)
	if in.TemplateID == "" || in.ClientID == "" {
		return nil, utils.NewValidationError("Template and client are required")
	}
	status := models.AssignmentStatus(strings.TrimSpace(in.Status))
	if status == "" {
		status = models.AssignmentActive
	}
	if !models.ValidAssignmentStatuses[status] {
		return nil, utils.NewValidationError("Invalid assignment status %q", in.Status)
	}
	assignedAt := s.now()
	if in.AssignedAt != nil && !in.AssignedAt.IsZero() {
		assignedAt = *in.AssignedAt
	}

	assignment := models.Assignment{
		Base:       models.Base{ID: strings.TrimSpace(in.ID)},
		TemplateID: in.TemplateID,
		ClientID:   in.ClientID,
		AssignedAt: assignedAt,
		Status:     status,
	}

	var template models.Template
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := loadAssignableTemplate(tx, in.TemplateID, &template); err != nil {
			return err
		}
		ok, err := exists(tx, &models.Client{}, in.ClientID)
		if err != nil {
			return utils.NewInternalError("Failed to check client", err)
		}
		if !ok {
			return utils.NewNotFoundError("Client not found")
		}

		if assignment.ID != "" {
			taken, err := exists(tx, &models.Assignment{}, assignment.ID)
			if err != nil {
				return utils.NewInternalError("Failed to check assignment id", err)
			}
			if taken {
				return utils.NewConflictError("Assignment id already exists")
			}
		}
		if err := tx.Create(&assignment).Error; err != nil {
			if isDuplicate(err) {
				return utils.NewConflictError("Template already assigned to this client")
			}
			return utils.NewInternalError("Failed to create assignment", err)
		}

		if status != models.AssignmentActive {
			return nil
		}

		tasks, err := s.generateFor(tx, &template, in.ClientID, assignedAt)
		if err != nil {
			return err
		}
		assignment.GeneratedTasks = tasks

		for _, m := range template.TemplateTeamMembers {
			member := models.ClientTeamMember{
				ClientID:     in.ClientID,
				AgentID:      m.AgentID,
				TeamID:       m.TeamID,
				Role:         m.Role,
				AssignedDate: assignedAt,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
				return utils.NewInternalError("Failed to assign client team", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActionAssign, "assignment", assignment.ID,
		fmt.Sprintf("Assigned template %s to client", template.Name),
		map[string]interface{}{
			"templateId": assignment.TemplateID,
			"clientId":   assignment.ClientID,
			"tasks":      len(assignment.GeneratedTasks),
		})
	return &assignment, nil
}

// ListByTemplate returns every assignment referencing the template.
func (s *AssignmentService) ListByTemplate(ctx context.Context, templateID string) ([]models.Assignment, error) {
	return s.List(ctx, AssignmentFilter{TemplateID: templateID})
}

func (s *AssignmentService) ListByClient(ctx context.Context, clientID string) ([]models.Assignment, error) {
	return s.List(ctx, AssignmentFilter{ClientID: clientID})
}

func (s *AssignmentService) List(ctx context.Context, f AssignmentFilter) ([]models.Assignment, error) {
	q := s.db.WithContext(ctx).Preload("Client").Preload("Template")
	if f.TemplateID != "" {
		q = q.Where("template_id = ?", f.TemplateID)
	}
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	assignments := []models.Assignment{}
	if err := q.Order("assigned_at DESC").Find(&assignments).Error; err != nil {
		return nil, utils.NewInternalError("Failed to fetch assignments", err)
	}
	return assignments, nil
}

// UpdateStatus changes an assignment's status. Cancelling also cancels the
// client's still-pending tasks generated from the template; reactivating
// generates tasks again for required assets left without an open one.
func (s *AssignmentService) UpdateStatus(ctx context.Context, id, status string) (*models.Assignment, error) {
	newStatus := models.AssignmentStatus(strings.TrimSpace(status))
	if !models.ValidAssignmentStatuses[newStatus] {
		return nil, utils.NewValidationError("Invalid assignment status %q", status)
	}

	var assignment models.Assignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOr(tx, &assignment, id, "Assignment"); err != nil {
			return err
		}
		previous := assignment.Status
		if err := tx.Model(&assignment).Update("status", newStatus).Error; err != nil {
			return utils.NewInternalError("Failed to update assignment", err)
		}
		assignment.Status = newStatus

		switch {
		case newStatus == models.AssignmentCancelled:
			return cancelPendingTasks(tx, &assignment)
		case newStatus == models.AssignmentActive && previous != models.AssignmentActive:
			var template models.Template
			if err := loadAssignableTemplate(tx, assignment.TemplateID, &template); err != nil {
				return err
			}
			tasks, err := s.generateFor(tx, &template, assignment.ClientID, s.now())
			if err != nil {
				return err
			}
			assignment.GeneratedTasks = tasks
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, models.ActionStatusChange, "assignment", id,
		fmt.Sprintf("Assignment marked %s", newStatus),
		map[string]interface{}{"tasks": len(assignment.GeneratedTasks)})
	return &assignment, nil
}

// Delete removes the assignment and cancels its still-pending tasks, as
// cancelling does. Worked tasks are kept.
func (s *AssignmentService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var assignment models.Assignment
		if err := findOr(tx, &assignment, id, "Assignment"); err != nil {
			return err
		}
		if err := cancelPendingTasks(tx, &assignment); err != nil {
			return err
		}
		if err := tx.Delete(&assignment).Error; err != nil {
			return utils.NewInternalError("Failed to delete assignment", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.activity.Record(ctx, models.ActionDelete, "assignment", id, "Removed assignment", nil)
	return nil
}
