package models

import "strings"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleStudent    UserRole = "STUDENT"
)

// DefaultAdminPanelRoles are the roles allowed to open the admin dashboard when none are configured.
var DefaultAdminPanelRoles = []UserRole{RoleSuperAdmin, RoleAdmin, RoleInstructor}

// ParseRoles converts raw configuration values into roles, falling back to the defaults.
func ParseRoles(raw []string) []UserRole {
	roles := make([]UserRole, 0, len(raw))
	for _, r := range raw {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r != "" {
			roles = append(roles, UserRole(r))
		}
	}
	if len(roles) == 0 {
		return append([]UserRole(nil), DefaultAdminPanelRoles...)
	}
	return roles
}

// IsAdminPanelRole reports whether role is one of allowed.
func IsAdminPanelRole(role UserRole, allowed []UserRole) bool {
	for _, a := range allowed {
		if strings.EqualFold(string(a), string(role)) {
			return true
		}
	}
	return false
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}
