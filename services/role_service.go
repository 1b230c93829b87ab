package services

import (
	"context"
	"fmt"
	"strings"

	"agencyops/models"
	"agencyops/utils"

	"gorm.io/gorm"
)

type RoleInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

type RoleService struct {
	db       *gorm.DB
	activity *ActivityService
}

func NewRoleService(db *gorm.DB, activity *ActivityService) *RoleService {
	return &RoleService{db: db, activity: activity}
}

func withGrants(r *models.Role) {
	r.PermissionIDs = r.Grants()
	if r.PermissionIDs == nil {
		r.PermissionIDs = []string{}
	}
}

func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	roles := []models.Role{}
	if err := s.db.WithContext(ctx).Preload("Permissions").Order("name").Find(&roles).Error; err != nil {
		return nil, utils.NewInternalError("Failed to fetch roles", err)
	}
	for i := range roles {
		withGrants(&roles[i])
	}
	return roles, nil
}

func (s *RoleService) Get(ctx context.Context, id string) (*models.Role, error) {
	var role models.Role
	if err := findOr(s.db.WithContext(ctx).Preload("Permissions"), &role, id, "Role"); err != nil {
		return nil, err
	}
	withGrants(&role)
	return &role, nil
}

// PermissionsFor returns the permission ids granted to a user through their role.
func (s *RoleService) PermissionsFor(ctx context.Context, user *models.User) ([]string, error) {
	role, err := s.Get(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	return role.PermissionIDs, nil
}

func checkRoleInput(in *RoleInput) error {
	in.Name = strings.ToLower(strings.TrimSpace(in.Name))
	if in.Name == "" {
		return utils.NewValidationError("Role name is required")
	}
	if unknown := utils.UnknownPermissions(in.Permissions); len(unknown) > 0 {
		return utils.NewValidationError("Unknown permissions: %s", strings.Join(unknown, ", "))
	}
	return nil
}

func replaceGrants(tx *gorm.DB, roleID string, permissions []string) error {
	if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}
	seen := map[string]bool{}
	var grants []models.RolePermission
	for _, p := range permissions {
		if seen[p] {
			continue
		}
		seen[p] = true
		grants = append(grants, models.RolePermission{RoleID: roleID, PermissionID: p})
	}
	if len(grants) == 0 {
		return nil
	}
	return tx.Create(&grants).Error
}

func (s *RoleService) Create(ctx context.Context, in RoleInput) (*models.Role, error) {
	if err := checkRoleInput(&in); err != nil {
		return nil, err
	}
	role := models.Role{Name: in.Name, Description: strings.TrimSpace(in.Description)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, &models.Role{}, in.Name, "")
		if err != nil {
			return utils.NewInternalError("Failed to check role name", err)
		}
		if taken {
			return utils.NewConflictError("Role name already exists")
		}
		if err := tx.Omit("Permissions").Create(&role).Error; err != nil {
			return utils.NewInternalError("Failed to create role", err)
		}
		if err := replaceGrants(tx, role.ID, in.Permissions); err != nil {
			return utils.NewInternalError("Failed to save permissions", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, models.ActionCreate, "role", role.ID, fmt.Sprintf("Created role %s", role.Name),
		map[string]interface{}{"permissions": in.Permissions})
	return s.Get(ctx, role.ID)
}

// Update renames a role and replaces its permission set. Built-in roles keep
// their name.
func (s *RoleService) Update(ctx context.Context, id string, in RoleInput) (*models.Role, error) {
	if err := checkRoleInput(&in); err != nil {
		return nil, err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := findOr(tx, &role, id, "Role"); err != nil {
			return err
		}
		if role.BuiltIn && role.Name != in.Name {
			return utils.NewValidationError("Built-in roles cannot be renamed")
		}
		taken, err := nameTaken(tx, &models.Role{}, in.Name, id)
		if err != nil {
			return utils.NewInternalError("Failed to check role name", err)
		}
		if taken {
			return utils.NewConflictError("Role name already exists")
		}
		if err := tx.Model(&role).Updates(map[string]interface{}{
			"name":        in.Name,
			"description": strings.TrimSpace(in.Description),
		}).Error; err != nil {
			return utils.NewInternalError("Failed to update role", err)
		}
		if role.Name == models.RoleAdmin {
			return nil
		}
		if err := replaceGrants(tx, id, in.Permissions); err != nil {
			return utils.NewInternalError("Failed to save permissions", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.activity.Record(ctx, models.ActionUpdate, "role", id, fmt.Sprintf("Updated role %s", in.Name),
		map[string]interface{}{"permissions": in.Permissions})
	return s.Get(ctx, id)
}

func (s *RoleService) Delete(ctx context.Context, id string) error {
	var role models.Role
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOr(tx, &role, id, "Role"); err != nil {
			return err
		}
		if role.BuiltIn {
			return utils.NewDependencyError("Built-in roles cannot be deleted")
		}
		var users int64
		if err := tx.Model(&models.User{}).Where("role_id = ?", id).Count(&users).Error; err != nil {
			return utils.NewInternalError("Failed to count role users", err)
		}
		if users > 0 {
			return utils.NewDependencyError("Cannot delete role with %d users", users)
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return utils.NewInternalError("Failed to delete permissions", err)
		}
		if err := tx.Delete(&role).Error; err != nil {
			return utils.NewInternalError("Failed to delete role", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.activity.Record(ctx, models.ActionDelete, "role", id, fmt.Sprintf("Deleted role %s", role.Name), nil)
	return nil
}
