package services

import (
	"context"
	"fmt"
	"strings"

	"agencyops/models"
	"agencyops/utils"

	"gorm.io/gorm"
)

type PackageInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Status      string `json:"status"`
}

type PackageService struct {
	db       *gorm.DB
	activity *ActivityService
}

func NewPackageService(db *gorm.DB, activity *ActivityService) *PackageService {
	return &PackageService{db: db, activity: activity}
}

func templateCount(tx *gorm.DB, packageID string) (int64, error) {
	var n int64
	err := tx.Model(&models.Template{}).Where("package_id = ?", packageID).Count(&n).Error
	return n, err
}

func (s *PackageService) List(ctx context.Context, search string) ([]models.Package, error) {
	db := s.db.WithContext(ctx)
	q := db.Model(&models.Package{})
	if strings.TrimSpace(search) != "" {
		pattern := likePattern(search)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	packages := []models.Package{}
	if err := q.Order("name").Find(&packages).Error; err != nil {
		return nil, utils.NewInternalError("Failed to fetch packages", err)
	}
	for i := range packages {
		n, err := templateCount(db, packages[i].ID)
		if err != nil {
			return nil, utils.NewInternalError("Failed to count templates", err)
		}
		packages[i].TemplateCount = n
	}
	return packages, nil
}

func (s *PackageService) Get(ctx context.Context, id string) (*models.Package, error) {
	db := s.db.WithContext(ctx)
	var pkg models.Package
	if err := findOr(db, &pkg, id, "Package"); err != nil {
		return nil, err
	}
	n, err := templateCount(db, id)
	if err != nil {
		return nil, utils.NewInternalError("Failed to count templates", err)
	}
	pkg.TemplateCount = n
	return &pkg, nil
}

func normalizePackage(in *PackageInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return utils.NewValidationError("Package name is required")
	}
	if in.Price < 0 {
		return utils.NewValidationError("Package price cannot be negative")
	}
	if in.Status == "" {
		in.Status = "active"
	}
	if in.Status != "active" && in.Status != "inactive" {
		return utils.NewValidationError("Invalid package status %q", in.Status)
	}
	return nil
}

func (s *PackageService) Create(ctx context.Context, in PackageInput) (*models.Package, error) {
	if err := normalizePackage(&in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	taken, err := nameTaken(db, &models.Package{}, in.Name, "")
	if err != nil {
		return nil, utils.NewInternalError("Failed to check package name", err)
	}
	if taken {
		return nil, utils.NewConflictError("Package name already exists")
	}

	pkg := models.Package{Name: in.Name, Description: in.Description, Price: in.Price, Status: in.Status}
	if err := db.Create(&pkg).Error; err != nil {
		if isDuplicate(err) {
			return nil, utils.NewConflictError("Package name already exists")
		}
		return nil, utils.NewInternalError("Failed to create package", err)
	}
	s.activity.Record(ctx, models.ActionCreate, "package", pkg.ID, fmt.Sprintf("Created package %s", pkg.Name), nil)
	return &pkg, nil
}

func (s *PackageService) Update(ctx context.Context, id string, in PackageInput) (*models.Package, error) {
	if err := normalizePackage(&in); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	var pkg models.Package
	if err := findOr(db, &pkg, id, "Package"); err != nil {
		return nil, err
	}
	taken, err := nameTaken(db, &models.Package{}, in.Name, id)
	if err != nil {
		return nil, utils.NewInternalError("Failed to check package name", err)
	}
	if taken {
		return nil, utils.NewConflictError("Package name already exists")
	}

	pkg.Name, pkg.Description, pkg.Price, pkg.Status = in.Name, in.Description, in.Price, in.Status
	if err := db.Save(&pkg).Error; err != nil {
		return nil, utils.NewInternalError("Failed to update package", err)
	}
	s.activity.Record(ctx, models.ActionUpdate, "package", id, fmt.Sprintf("Updated package %s", pkg.Name), nil)
	return s.Get(ctx, id)
}

// Delete refuses to remove a package that still owns templates.
func (s *PackageService) Delete(ctx context.Context, id string) error {
	var pkg models.Package
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findOr(tx, &pkg, id, "Package"); err != nil {
			return err
		}
		n, err := templateCount(tx, id)
		if err != nil {
			return utils.NewInternalError("Failed to count templates", err)
		}
		if n > 0 {
			return utils.NewDependencyError("Cannot delete package with %d templates", n)
		}
		if err := tx.Model(&models.Client{}).Where("package_id = ?", id).Update("package_id", nil).Error; err != nil {
			return utils.NewInternalError("Failed to detach clients", err)
		}
		if err := tx.Delete(&pkg).Error; err != nil {
			return utils.NewInternalError("Failed to delete package", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.activity.Record(ctx, models.ActionDelete, "package", id, fmt.Sprintf("Deleted package %s", pkg.Name), nil)
	return nil
}
