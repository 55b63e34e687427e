package authz

// HasPermission decides whether a role may exercise a permission. It is a
// total function: unknown roles and permissions absent from the table both
// evaluate to false.
func HasPermission(role Role, perm Permission) bool {
	set, ok := table[role]
	if !ok {
		return false
	}
	_, granted := set[perm]
	return granted
}

// HasPermission reports whether the principal may exercise the permission.
// A nil principal (no authenticated session) is always denied.
func (p *Principal) HasPermission(perm Permission) bool {
	if p == nil {
		return false
	}
	return HasPermission(p.Role, perm)
}

// CanManageUsers is a pure alias for HasPermission(manage_users).
func (p *Principal) CanManageUsers() bool {
	return p.HasPermission(PermManageUsers)
}

// CanCreateAdmin is a pure alias for HasPermission(create_admin).
func (p *Principal) CanCreateAdmin() bool {
	return p.HasPermission(PermCreateAdmin)
}

// CanCreateModerator is a pure alias for HasPermission(create_moderator).
func (p *Principal) CanCreateModerator() bool {
	return p.HasPermission(PermCreateModerator)
}

// CanManageUser decides whether the principal may modify an account holding
// the target role: super admins manage everyone, admins manage moderators
// only, moderators manage no one.
func (p *Principal) CanManageUser(target Role) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return target == RoleModerator
	default:
		return false
	}
}
