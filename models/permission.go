package models

// Permission is one leaf of the access-control taxonomy.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PermissionGroup is a subcategory within a category.
type PermissionGroup struct {
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// PermissionCategory is the top level of the taxonomy.
type PermissionCategory struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Groups []PermissionGroup `json:"groups"`
}

const (
	PermViewClients    = "view_clients"
	PermCreateClient   = "create_client"
	PermEditClient     = "edit_client"
	PermDeleteClient   = "delete_client"
	PermViewPackages   = "view_packages"
	PermCreatePackage  = "create_package"
	PermEditPackage    = "edit_package"
	PermDeletePackage  = "delete_package"
	PermViewTemplates  = "view_templates"
	PermCreateTemplate = "create_template"
	PermEditTemplate   = "edit_template"
	PermDeleteTemplate = "delete_template"
	PermAssignTemplate = "assign_template"
	PermViewTasks      = "view_tasks"
	PermManageTasks    = "manage_tasks"
	PermViewTeams      = "view_teams"
	PermManageTeams    = "manage_teams"
	PermViewAgents     = "view_agents"
	PermManageAgents   = "manage_agents"
	PermManageRoles    = "manage_roles"
	PermViewActivity   = "view_activity"
)

// PermissionTaxonomy is the static category -> group -> permission tree.
var PermissionTaxonomy = []PermissionCategory{
	{
		ID:   "clients",
		Name: "Clients",
		Groups: []PermissionGroup{
			{
				Name: "Client Management",
				Permissions: []Permission{
					{ID: PermViewClients, Name: "View clients", Description: "See the client list and client details"},
					{ID: PermCreateClient, Name: "Create client", Description: "Onboard new clients"},
					{ID: PermEditClient, Name: "Edit client", Description: "Change client details and progress"},
					{ID: PermDeleteClient, Name: "Delete client", Description: "Remove a client and its work"},
				},
			},
		},
	},
	{
		ID:   "packages",
		Name: "Packages & Templates",
		Groups: []PermissionGroup{
			{
				Name: "Packages",
				Permissions: []Permission{
					{ID: PermViewPackages, Name: "View packages", Description: "See packages"},
					{ID: PermCreatePackage, Name: "Create package", Description: "Add packages"},
					{ID: PermEditPackage, Name: "Edit package", Description: "Change package details"},
					{ID: PermDeletePackage, Name: "Delete package", Description: "Remove empty packages"},
				},
			},
			{
				Name: "Templates",
				Permissions: []Permission{
					{ID: PermViewTemplates, Name: "View templates", Description: "See templates and their assets"},
					{ID: PermCreateTemplate, Name: "Create template", Description: "Add templates to a package"},
					{ID: PermEditTemplate, Name: "Edit template", Description: "Change templates, assets and team members"},
					{ID: PermDeleteTemplate, Name: "Delete template", Description: "Remove templates and their assignments"},
					{ID: PermAssignTemplate, Name: "Assign template", Description: "Assign templates to clients"},
				},
			},
		},
	},
	{
		ID:   "work",
		Name: "Work",
		Groups: []PermissionGroup{
			{
				Name: "Tasks",
				Permissions: []Permission{
					{ID: PermViewTasks, Name: "View tasks", Description: "See tasks and categories"},
					{ID: PermManageTasks, Name: "Manage tasks", Description: "Create, edit and delete tasks and categories"},
				},
			},
		},
	},
	{
		ID:   "people",
		Name: "People",
		Groups: []PermissionGroup{
			{
				Name: "Teams",
				Permissions: []Permission{
					{ID: PermViewTeams, Name: "View teams", Description: "See teams and member counts"},
					{ID: PermManageTeams, Name: "Manage teams", Description: "Create, edit and delete teams"},
				},
			},
			{
				Name: "Agents",
				Permissions: []Permission{
					{ID: PermViewAgents, Name: "View agents", Description: "See agents"},
					{ID: PermManageAgents, Name: "Manage agents", Description: "Create, edit and delete agents"},
				},
			},
		},
	},
	{
		ID:   "admin",
		Name: "Administration",
		Groups: []PermissionGroup{
			{
				Name: "Roles",
				Permissions: []Permission{
					{ID: PermManageRoles, Name: "Manage roles", Description: "Create roles and grant permissions"},
				},
			},
			{
				Name: "Activity",
				Permissions: []Permission{
					{ID: PermViewActivity, Name: "View activity", Description: "Read the activity log"},
				},
			},
		},
	},
}

var permissionIndex = func() map[string]Permission {
	idx := make(map[string]Permission)
	for _, cat := range PermissionTaxonomy {
		for _, g := range cat.Groups {
			for _, p := range g.Permissions {
				idx[p.ID] = p
			}
		}
	}
	return idx
}()

// LookupPermission finds a permission by id.
func LookupPermission(id string) (Permission, bool) {
	p, ok := permissionIndex[id]
	return p, ok
}

// AllPermissionIDs lists every permission id in taxonomy order.
func AllPermissionIDs() []string {
	var ids []string
	for _, cat := range PermissionTaxonomy {
		for _, g := range cat.Groups {
			for _, p := range g.Permissions {
				ids = append(ids, p.ID)
			}
		}
	}
	return ids
}

// AgentPermissionIDs is the default grant for the built-in agent role.
var AgentPermissionIDs = []string{
	PermViewClients,
	PermViewPackages,
	PermViewTemplates,
	PermViewTasks,
	PermManageTasks,
	PermViewTeams,
}
