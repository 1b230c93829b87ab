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

// ClientInput carries client fields. Dates accept "2006-01-02" or RFC 3339.
type ClientInput struct {
	Name        string            `json:"name"`
	Company     string            `json:"company"`
	Designation string            `json:"designation"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	BirthDate   string            `json:"birthDate"`
	Website     string            `json:"website"`
	Website2    string            `json:"website2"`
	Website3    string            `json:"website3"`
	Biography   string            `json:"biography"`
	SocialLinks map[string]string `json:"socialLinks"`
	PackageID   *string           `json:"packageId"`
	Status      string            `json:"status"`
	Progress    int               `json:"progress"`
	StartDate   string            `json:"startDate"`
	DueDate     string            `json:"dueDate"`
}

type ClientFilter struct {
	Status    string
	PackageID string
	Search    string
}

func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, utils.NewValidationError("Invalid %s %q", field, value)
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// buildClient validates the input and copies it onto c.
func buildClient(tx *gorm.DB, in ClientInput, c *models.Client) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return utils.NewValidationError("Client name is required")
	}
	email := strings.TrimSpace(in.Email)
	if email != "" {
		if err := utils.ValidateEmail(email); err != nil {
			return err
		}
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.ClientPending
	}
	if !models.ValidClientStatuses[status] {
		return utils.NewValidationError("Invalid client status %q", in.Status)
	}

	birth, err := parseDate("birthDate", in.BirthDate)
	if err != nil {
		return err
	}
	start, err := parseDate("startDate", in.StartDate)
	if err != nil {
		return err
	}
	due, err := parseDate("dueDate", in.DueDate)
	if err != nil {
		return err
	}
	if start != nil && due != nil && due.Before(*start) {
		return utils.NewValidationError("Due date cannot be before start date")
	}

	packageID := optionalID(in.PackageID)
	if packageID != nil {
		if err := requirePackage(tx, *packageID); err != nil {
			return err
		}
	}

	c.Name = name
	c.Company = strings.TrimSpace(in.Company)
	c.Designation = strings.TrimSpace(in.Designation)
	c.Email = email
	c.Phone = strings.TrimSpace(in.Phone)
	c.BirthDate = birth
	c.Website = strings.TrimSpace(in.Website)
	c.Website2 = strings.TrimSpace(in.Website2)
	c.Website3 = strings.TrimSpace(in.Website3)
	c.Biography = strings.TrimSpace(in.Biography)
	c.SocialLinks = in.SocialLinks
	c.PackageID = packageID
	c.Status = status
	c.Progress = clampProgress(in.Progress)
	c.StartDate = start
	c.DueDate = due
	return nil
}

type ClientService struct {
	db       *gorm.DB
	activity *ActivityService
}

func NewClientService(db *gorm.DB, activity *ActivityService) *ClientService {
	return &ClientService{db: db, activity: activity}
}

func (s *ClientService) List(ctx context.Context, f ClientFilter) ([]models.Client, error) {
	q := s.db.WithContext(ctx).Preload("Package")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PackageID != "" {
		q = q.Where("package_id = ?", f.PackageID)
	}
	if strings.TrimSpace(f.Search) != "" {
		pattern := likePattern(f.Search)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(company) LIKE ? OR LOWER(email) LIKE ?)", pattern, pattern, pattern)
	}
	clients := []models.Client{}
	if err := q.Order("created_at DESC").Find(&clients).Error; err != nil {
		return nil, utils.NewInternalError("Failed to fetch clients", err)
	}
	return clients, nil
}

func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	var client models.Client
	if err := findOr(s.db.WithContext(ctx).Preload("Package"), &client, id, "Client"); err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *ClientService) Create(ctx context.Context, in ClientInput) (*models.Client, error) {
	db := s.db.WithContext(ctx)
	var client models.Client
	if err := buildClient(db, in, &client); err != nil {
		return nil, err
	}
	if err := db.Create(&client).Error; err != nil {
		return nil, utils.NewInternalError("Failed to create client", err)
	}
	s.activity.Record(ctx, models.ActionCreate, "client", client.ID, fmt.Sprintf("Onboarded client %s", client.Name), nil)
	return s.Get(ctx, client.ID)
}

func (s *ClientService) Update(ctx context.Context, id string, in ClientInput) (*models.Client, error) {
	db := s.db.WithContext(ctx)
	var client models.Client
	if err := findOr(db, &client, id, "Client"); err != nil {
		return nil, err
	}
	previousStatus := client.Status
	if err := buildClient(db, in, &client); err != nil {
		return nil, err
	}
	if err := db.Omit("Package").Save(&client).Error; err != nil {
		return nil, utils.NewInternalError("Failed to update client", err)
	}

	action := models.ActionUpdate
	if previousStatus != client.Status {
		action = models.ActionStatusChange
	}
	s.activity.Record(ctx, action, "client", id, fmt.Sprintf("Updated client %s", client.Name),
		map[string]interface{}{"status": client.Status, "progress": client.Progress})
	return s.Get(ctx, id)
}

// Delete removes the client with its tasks, assignments and team rows.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	var client models.Client
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOr(tx, &client, id, "Client"); err != nil {
			return err
		}
		children := []interface{}{
			&models.Task{},
			&models.Assignment{},
			&models.ClientTeamMember{},
		}
		for _, child := range children {
			if err := tx.Where("client_id = ?", id).Delete(child).Error; err != nil {
				return utils.NewInternalError("Failed to delete client dependencies", err)
			}
		}
		if err := tx.Where("id = ?", id).Delete(&models.Client{}).Error; err != nil {
			return utils.NewInternalError("Failed to delete client", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.activity.Record(ctx, models.ActionDelete, "client", id, fmt.Sprintf("Deleted client %s", client.Name), nil)
	return nil
}
