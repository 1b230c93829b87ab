package services

import (
	"context"
	"strings"
	"time"

	"agencyops/models"
	"agencyops/utils"

	"gorm.io/gorm"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Session struct {
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        *models.User `json:"user"`
	Permissions []string     `json:"permissions"`
}

type AuthService struct {
	db       *gorm.DB
	roles    *RoleService
	activity *ActivityService
}

func NewAuthService(db *gorm.DB, roles *RoleService, activity *ActivityService) *AuthService {
	return &AuthService{db: db, roles: roles, activity: activity}
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := utils.ValidateStruct(in); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var user models.User
	if err := db.Preload("Role").Where("email = ?", in.Email).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, utils.NewUnauthorizedError("Invalid email or password")
		}
		return nil, utils.NewInternalError("Failed to fetch user", err)
	}
	if !utils.CheckPassword(user.PasswordHash, in.Password) {
		return nil, utils.NewUnauthorizedError("Invalid email or password")
	}
	if !user.IsActive() {
		return nil, utils.NewUnauthorizedError("Account is not active")
	}

	roleName := ""
	if user.Role != nil {
		roleName = user.Role.Name
	}
	token, expiresAt, err := utils.GenerateJWTToken(&user, roleName)
	if err != nil {
		return nil, utils.NewInternalError("Failed to generate token", err)
	}

	now := time.Now()
	if err := db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, utils.NewInternalError("Failed to record login", err)
	}
	user.LastLoginAt = &now

	perms, err := s.roles.PermissionsFor(ctx, &user)
	if err != nil {
		return nil, err
	}

	s.activity.Record(WithActor(ctx, user.ID), models.ActionLogin, "user", user.ID, user.Name+" logged in", nil)
	return &Session{AccessToken: token, ExpiresAt: expiresAt, User: &user, Permissions: perms}, nil
}

// Authenticate resolves a bearer token into an active user and their permissions.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, []string, error) {
	claims, err := utils.ParseJWTToken(token)
	if err != nil {
		return nil, nil, utils.NewUnauthorizedError("Invalid or expired token")
	}
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Role").First(&user, "id = ?", claims.UserID).Error; err != nil {
		if isNotFound(err) {
			return nil, nil, utils.NewUnauthorizedError("User not found")
		}
		return nil, nil, utils.NewInternalError("Failed to fetch user", err)
	}
	if !user.IsActive() {
		return nil, nil, utils.NewUnauthorizedError("Account is not active")
	}
	perms, err := s.roles.PermissionsFor(ctx, &user)
	if err != nil {
		return nil, nil, err
	}
	return &user, perms, nil
}
