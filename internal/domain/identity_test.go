package domain

import (
	"testing"
)

func TestIdentity_CanAccess(t *testing.T) {
	tests := []struct {
		name     string
		identity Identity
		target   string
		want     bool
	}{
		{"super admin any hostel", Identity{Role: RoleSuperAdmin}, "h2", true},
		{"super admin with own hostel elsewhere", Identity{Role: RoleSuperAdmin, HostelID: "h1"}, "h2", true},
		{"admin own hostel", Identity{Role: RoleAdmin, HostelID: "h1"}, "h1", true},
		{"admin other hostel", Identity{Role: RoleAdmin, HostelID: "h1"}, "h2", false},
		{"manager own hostel", Identity{Role: RoleManager, HostelID: "h1"}, "h1", true},
		{"manager other hostel", Identity{Role: RoleManager, HostelID: "h1"}, "h2", false},
		{"staff own hostel", Identity{Role: RoleStaff, HostelID: "h1"}, "h1", true},
		{"staff other hostel", Identity{Role: RoleStaff, HostelID: "h1"}, "h2", false},
		{"staff without hostel never matches empty target", Identity{Role: RoleStaff}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.identity.CanAccess(tt.target); got != tt.want {
				t.Errorf("CanAccess(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestRole_IsValid(t *testing.T) {
	for _, r := range []Role{RoleSuperAdmin, RoleAdmin, RoleManager, RoleStaff} {
		if !r.IsValid() {
			t.Errorf("%s should be valid", r)
		}
	}
	if Role("OWNER").IsValid() {
		t.Error("OWNER should not be a valid role")
	}
}
