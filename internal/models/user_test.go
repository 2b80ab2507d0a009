package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"hub lead role", RoleHubLead, true},
		{"technician role", RoleTechnician, true},
		{"owner role", RoleOwner, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	hubLead := &User{Role: RoleHubLead}
	technician := &User{Role: RoleTechnician}
	owner := &User{Role: RoleOwner}

	tests := []struct {
		name     string
		user     *User
		action   string
		expected bool
	}{
		// Admin permissions - should have all permissions
		{"admin can delete user", admin, "delete_user", true},
		{"admin can manage users", admin, "manage_users", true},
		{"admin can assign service", admin, "assign_service", true},

		// Hub lead permissions - everything except user management
		{"hub lead cannot delete user", hubLead, "delete_user", false},
		{"hub lead cannot manage users", hubLead, "manage_users", false},
		{"hub lead can assign service", hubLead, "assign_service", true},
		{"hub lead can manage parts", hubLead, "manage_parts", true},

		// Technician permissions - work on assigned requests
		{"technician can view requests", technician, "view_requests", true},
		{"technician can update request", technician, "update_request", true},
		{"technician can view parts", technician, "view_parts", true},
		{"technician cannot assign service", technician, "assign_service", false},
		{"technician cannot manage parts", technician, "manage_parts", false},

		// Owner permissions - submit and track requests
		{"owner can create request", owner, "create_request", true},
		{"owner can view requests", owner, "view_requests", true},
		{"owner cannot update request", owner, "update_request", false},
		{"owner cannot manage parts", owner, "manage_parts", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("User with role %s HasPermission(%s) = %v, want %v",
					tt.user.Role, tt.action, result, tt.expected)
			}
		})
	}
}
