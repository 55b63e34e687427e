package authz

// Role is the closed set of admin roles. Free-form role strings from storage
// or the wire must go through ParseRole so an unknown value surfaces as
// RoleUnknown instead of silently granting nothing in a stringly table.
type Role string

const (
	RoleUnknown    Role = ""
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleModerator  Role = "moderator"
)

// ParseRole maps a stored role name onto the closed enumeration.
func ParseRole(s string) Role {
	switch s {
	case string(RoleSuperAdmin):
		return RoleSuperAdmin
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleModerator):
		return RoleModerator
	default:
		return RoleUnknown
	}
}

// Valid reports whether the role is a member of the closed enumeration.
func (r Role) Valid() bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RoleModerator
}

func (r Role) String() string { return string(r) }

// AssignableRoles lists the roles that may be granted through the admin user
// endpoints. super_admin is deliberately absent; it cannot be created over
// the API.
func AssignableRoles() []Role {
	return []Role{RoleAdmin, RoleModerator}
}

// Permission is a named capability gating a specific admin action or view.
type Permission string

const (
	PermViewDashboard   Permission = "view_dashboard"
	PermManageUsers     Permission = "manage_users"
	PermManageSellers   Permission = "manage_sellers"
	PermManageOrders    Permission = "manage_orders"
	PermManageProducts  Permission = "manage_products"
	PermViewAnalytics   Permission = "view_analytics"
	PermCreateAdmin     Permission = "create_admin"
	PermCreateModerator Permission = "create_moderator"
	PermDeleteUsers     Permission = "delete_users"
	PermDeleteModerator Permission = "delete_moderator"
	PermViewUsers       Permission = "view_users"
	PermViewProducts    Permission = "view_products"
	PermSystemConfig    Permission = "system_config"
	PermAuditLogs       Permission = "audit_logs"
)

func (p Permission) String() string { return string(p) }

// Principal describes the authenticated actor for the current request.
type Principal struct {
	ID       int64
	Username string
	Role     Role
}
