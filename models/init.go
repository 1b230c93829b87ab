package models

import "gorm.io/gorm"

// CreateDefaultRoles seeds the built-in admin and agent roles.
func CreateDefaultRoles(db *gorm.DB) error {
	defaultRoles := []struct {
		role  Role
		perms []string
	}{
		{
			role:  Role{Name: RoleAdmin, Description: "Full access to every area", BuiltIn: true},
			perms: nil, // admin is granted everything implicitly
		},
		{
			role:  Role{Name: RoleAgent, Description: "Staff member who works client tasks", BuiltIn: true},
			perms: AgentPermissionIDs,
		},
	}
	for _, d := range defaultRoles {
		role := d.role
		if err := db.Where("name = ?", role.Name).FirstOrCreate(&role).Error; err != nil {
			return err
		}
		for _, p := range d.perms {
			rp := RolePermission{RoleID: role.ID, PermissionID: p}
			if err := db.FirstOrCreate(&rp, rp).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateDefaultTaskCategories seeds one category per site-asset type.
func CreateDefaultTaskCategories(db *gorm.DB) error {
	for _, t := range AssetTypeOrder {
		category := TaskCategory{
			Name:        AssetTypeLabels[t],
			Description: "Work on " + AssetTypeLabels[t] + " deliverables",
		}
		if err := db.Where("name = ?", category.Name).FirstOrCreate(&category).Error; err != nil {
			return err
		}
	}
	return nil
}
