package utils

import "agencyops/models"

// HasPermission reports whether the granted set contains permissionID. It is
// a pure lookup usable both for UI gating and server-side checks.
func HasPermission(userPermissions []string, permissionID string) bool {
	if _, ok := models.LookupPermission(permissionID); !ok {
		return false
	}
	for _, p := range userPermissions {
		if p == permissionID {
			return true
		}
	}
	return false
}

// UnknownPermissions returns the ids that are not in the taxonomy.
func UnknownPermissions(ids []string) []string {
	var unknown []string
	for _, id := range ids {
		if _, ok := models.LookupPermission(id); !ok {
			unknown = append(unknown, id)
		}
	}
	return unknown
}
