package authz

// The authorization table is a process-wide constant: role permission sets
// are enumerated independently and are NOT hierarchical. admin does not
// inherit super_admin grants; a permission missing from a senior role stays
// missing until added here explicitly.
var table = map[Role]map[Permission]struct{}{
	RoleSuperAdmin: permSet(
		PermViewDashboard, PermManageUsers, PermManageSellers, PermManageOrders,
		PermManageProducts, PermViewAnalytics, PermCreateAdmin, PermCreateModerator,
		PermDeleteUsers, PermSystemConfig, PermAuditLogs,
	),
	RoleAdmin: permSet(
		PermViewDashboard, PermManageUsers, PermManageSellers, PermManageOrders,
		PermManageProducts, PermViewAnalytics, PermCreateModerator, PermDeleteModerator,
	),
	RoleModerator: permSet(
		PermViewDashboard, PermViewUsers, PermManageOrders, PermViewProducts,
	),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Grants returns the permission set for a role. Unknown roles yield an empty
// set rather than an error; the evaluator is total.
func Grants(role Role) []Permission {
	set, ok := table[role]
	if !ok {
		return nil
	}
	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	return perms
}
