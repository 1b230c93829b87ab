package services

import (
	"context"
	"fmt"
	"strings"

	"agencyops/models"
	"agencyops/utils"

	"gorm.io/gorm"
)

type AgentInput struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"omitempty,min=8"`
	Phone    string  `json:"phone"`
	TeamID   *string `json:"teamId"`
	Status   string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

type AgentFilter struct {
	TeamID string
	Status string
	Search string
}

type AgentService struct {
	db       *gorm.DB
	activity *ActivityService
}

func NewAgentService(db *gorm.DB, activity *ActivityService) *AgentService {
	return &AgentService{db: db, activity: activity}
}

func agentRole(tx *gorm.DB) (*models.Role, error) {
	var role models.Role
	if err := tx.Where("name = ?", models.RoleAgent).First(&role).Error; err != nil {
		return nil, utils.NewInternalError("Agent role is missing", err)
	}
	return &role, nil
}

func (s *AgentService) agents(tx *gorm.DB) (*gorm.DB, error) {
	role, err := agentRole(tx)
	if err != nil {
		return nil, err
	}
	return tx.Model(&models.User{}).Where("role_id = ?", role.ID), nil
}

func (s *AgentService) List(ctx context.Context, f AgentFilter) ([]models.User, error) {
	q, err := s.agents(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if f.TeamID != "" {
		q = q.Where("team_id = ?", f.TeamID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if strings.TrimSpace(f.Search) != "" {
		pattern := likePattern(f.Search)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", pattern, pattern)
	}
	agents := []models.User{}
	if err := q.Preload("Team").Order("name").Find(&agents).Error; err != nil {
		return nil, utils.NewInternalError("Failed to fetch agents", err)
	}
	return agents, nil
}

func (s *AgentService) Get(ctx context.Context, id string) (*models.User, error) {
	q, err := s.agents(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	var agent models.User
	if err := q.Preload("Team").First(&agent, "users.id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, utils.NewNotFoundError("Agent not found")
		}
		return nil, utils.NewInternalError("Failed to fetch agent", err)
	}
	return &agent, nil
}

// checkAgentInput validates fields shared by create and update and returns
// the normalized email and team id.
func checkAgentInput(tx *gorm.DB, in *AgentInput, exceptID string) (*string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}
	if err := utils.ValidateEmail(in.Email); err != nil {
		return nil, err
	}

	teamID := optionalID(in.TeamID)
	if teamID == nil {
		return nil, utils.NewValidationError("Team is required")
	}
	ok, err := exists(tx, &models.Team{}, *teamID)
	if err != nil {
		return nil, utils.NewInternalError("Failed to check team", err)
	}
	if !ok {
		return nil, utils.NewValidationError("Selected team does not exist")
	}

	var count int64
	q := tx.Model(&models.User{}).Where("email = ?", in.Email)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return nil, utils.NewInternalError("Failed to check email", err)
	}
	if count > 0 {
		return nil, utils.NewConflictError("Email already exists")
	}
	return teamID, nil
}

func (s *AgentService) Create(ctx context.Context, in AgentInput) (*models.User, error) {
	db := s.db.WithContext(ctx)
	if strings.TrimSpace(in.Password) == "" {
		return nil, utils.NewValidationError("password is required")
	}
	teamID, err := checkAgentInput(db, &in, "")
	if err != nil {
		return nil, err
	}
	role, err := agentRole(db)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, utils.NewInternalError("Failed to hash password", err)
	}

	status := in.Status
	if status == "" {
		status = models.UserActive
	}
	agent := models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		RoleID:       role.ID,
		TeamID:       teamID,
		Status:       status,
	}
	if err := db.Create(&agent).Error; err != nil {
		if isDuplicate(err) {
			return nil, utils.NewConflictError("Email already exists")
		}
		return nil, utils.NewInternalError("Failed to create agent", err)
	}

	s.activity.Record(ctx, models.ActionCreate, "agent", agent.ID, fmt.Sprintf("Created agent %s", agent.Name), nil)
	return s.Get(ctx, agent.ID)
}

// Update changes an agent; the password is rehashed only when supplied.
func (s *AgentService) Update(ctx context.Context, id string, in AgentInput) (*models.User, error) {
	agent, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	teamID, err := checkAgentInput(db, &in, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":    in.Name,
		"email":   in.Email,
		"phone":   strings.TrimSpace(in.Phone),
		"team_id": *teamID,
	}
	if in.Status != "" {
		updates["status"] = in.Status
	}
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, utils.NewInternalError("Failed to hash password", err)
		}
		updates["password_hash"] = hash
	}
	if err := db.Model(&models.User{}).Where("id = ?", agent.ID).Updates(updates).Error; err != nil {
		if isDuplicate(err) {
			return nil, utils.NewConflictError("Email already exists")
		}
		return nil, utils.NewInternalError("Failed to update agent", err)
	}

	s.activity.Record(ctx, models.ActionUpdate, "agent", id, fmt.Sprintf("Updated agent %s", in.Name), nil)
	return s.Get(ctx, id)
}

// Delete removes the agent, unassigning their tasks and dropping their
// template and client memberships.
func (s *AgentService) Delete(ctx context.Context, id string) error {
	agent, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).Where("assigned_to = ?", id).Update("assigned_to", nil).Error; err != nil {
			return utils.NewInternalError("Failed to unassign tasks", err)
		}
		if err := tx.Where("agent_id = ?", id).Delete(&models.TemplateTeamMember{}).Error; err != nil {
			return utils.NewInternalError("Failed to remove template memberships", err)
		}
		if err := tx.Where("agent_id = ?", id).Delete(&models.ClientTeamMember{}).Error; err != nil {
			return utils.NewInternalError("Failed to remove client memberships", err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
			return utils.NewInternalError("Failed to delete agent", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, models.ActionDelete, "agent", id, fmt.Sprintf("Deleted agent %s", agent.Name), nil)
	return nil
}
