package services

import (
	"context"
	"fmt"
	"strings"

	"agencyops/models"
	"agencyops/utils"

	"gorm.io/gorm"
)

type TeamInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type TeamService struct {
	db       *gorm.DB
	activity *ActivityService
}

func NewTeamService(db *gorm.DB, activity *ActivityService) *TeamService {
	return &TeamService{db: db, activity: activity}
}

// memberCount is the number of client and template team-member rows that
// reference the team.
func memberCount(tx *gorm.DB, teamID string) (int64, error) {
	var clientMembers, templateMembers int64
	if err := tx.Model(&models.ClientTeamMember{}).Where("team_id = ?", teamID).Count(&clientMembers).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.TemplateTeamMember{}).Where("team_id = ?", teamID).Count(&templateMembers).Error; err != nil {
		return 0, err
	}
	return clientMembers + templateMembers, nil
}

func (s *TeamService) withCounts(tx *gorm.DB, team *models.Team) error {
	n, err := memberCount(tx, team.ID)
	if err != nil {
		return err
	}
	team.MemberCount = n
	return tx.Model(&models.User{}).Where("team_id = ?", team.ID).Count(&team.AgentCount).Error
}

func (s *TeamService) List(ctx context.Context) ([]models.Team, error) {
	db := s.db.WithContext(ctx)
	teams := []models.Team{}
	if err := db.Order("name").Find(&teams).Error; err != nil {
		return nil, utils.NewInternalError("Failed to fetch teams", err)
	}
	for i := range teams {
		if err := s.withCounts(db, &teams[i]); err != nil {
			return nil, utils.NewInternalError("Failed to count team members", err)
		}
	}
	return teams, nil
}

func (s *TeamService) Get(ctx context.Context, id string) (*models.Team, error) {
	db := s.db.WithContext(ctx)
	var team models.Team
	if err := findOr(db, &team, id, "Team"); err != nil {
		return nil, err
	}
	if err := s.withCounts(db, &team); err != nil {
		return nil, utils.NewInternalError("Failed to count team members", err)
	}
	return &team, nil
}

// nameTaken reports whether another team already uses name.
func nameTaken(tx *gorm.DB, model interface{}, name, exceptID string) (bool, error) {
	var count int64
	q := tx.Model(model).Where("name = ?", name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *TeamService) Create(ctx context.Context, in TeamInput) (*models.Team, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, utils.NewValidationError("Team name is required")
	}
	db := s.db.WithContext(ctx)

	taken, err := nameTaken(db, &models.Team{}, name, "")
	if err != nil {
		return nil, utils.NewInternalError("Failed to check team name", err)
	}
	if taken {
		return nil, utils.NewConflictError("Team name already exists")
	}

	team := models.Team{Name: name, Description: strings.TrimSpace(in.Description)}
	if err := db.Create(&team).Error; err != nil {
		if isDuplicate(err) {
			return nil, utils.NewConflictError("Team name already exists")
		}
		return nil, utils.NewInternalError("Failed to create team", err)
	}

	s.activity.Record(ctx, models.ActionCreate, "team", team.ID, fmt.Sprintf("Created team %s", team.Name), nil)
	return &team, nil
}

func (s *TeamService) Update(ctx context.Context, id string, in TeamInput) (*models.Team, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, utils.NewValidationError("Team name is required")
	}
	db := s.db.WithContext(ctx)

	var team models.Team
	if err := findOr(db, &team, id, "Team"); err != nil {
		return nil, err
	}
	taken, err := nameTaken(db, &models.Team{}, name, id)
	if err != nil {
		return nil, utils.NewInternalError("Failed to check team name", err)
	}
	if taken {
		return nil, utils.NewConflictError("Team name already exists")
	}

	team.Name = name
	team.Description = strings.TrimSpace(in.Description)
	if err := db.Save(&team).Error; err != nil {
		if isDuplicate(err) {
			return nil, utils.NewConflictError("Team name already exists")
		}
		return nil, utils.NewInternalError("Failed to update team", err)
	}

	s.activity.Record(ctx, models.ActionUpdate, "team", team.ID, fmt.Sprintf("Updated team %s", team.Name), nil)
	return &team, nil
}

// Delete removes an empty team. Teams still referenced by client or template
// members are kept and a DependencyError reports how many.
func (s *TeamService) Delete(ctx context.Context, id string) error {
	var team models.Team
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOr(tx, &team, id, "Team"); err != nil {
			return err
		}
		n, err := memberCount(tx, id)
		if err != nil {
			return utils.NewInternalError("Failed to count team members", err)
		}
		if n > 0 {
			return utils.NewDependencyError("Cannot delete team with %d members. Please reassign or remove them first.", n)
		}
		if err := tx.Model(&models.User{}).Where("team_id = ?", id).Update("team_id", nil).Error; err != nil {
			return utils.NewInternalError("Failed to detach agents", err)
		}
		if err := tx.Delete(&team).Error; err != nil {
			return utils.NewInternalError("Failed to delete team", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.activity.Record(ctx, models.ActionDelete, "team", id, fmt.Sprintf("Deleted team %s", team.Name), nil)
	return nil
}
