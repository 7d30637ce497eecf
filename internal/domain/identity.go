package domain

// Role is a user's platform or tenant role
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleManager    Role = "MANAGER"
	RoleStaff      Role = "STAFF"
)

// IsValid returns true for known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// Identity is the authenticated caller, as established by the JWT middleware.
// HostelID is empty only for platform super admins without a hostel of their own.
type Identity struct {
	UserID   string
	HostelID string
	Role     Role
}

// IsSuperAdmin reports whether the identity bypasses tenant isolation
func (i Identity) IsSuperAdmin() bool {
	return i.Role == RoleSuperAdmin
}

// CanAccess reports whether the identity may act on the given hostel
func (i Identity) CanAccess(hostelID string) bool {
	if i.IsSuperAdmin() {
		return true
	}
	return i.HostelID != "" && i.HostelID == hostelID
}
