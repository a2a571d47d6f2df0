package constants

// PermissionRoles maps each permission to roles allowed to perform it.
var PermissionRoles = map[string][]string{
	InvitationView:       {Manager, Admin},
	InvitationCreate:     {Manager, Admin},
	InvitationBulkCreate: {Admin},
	InvitationManage:     {Admin},

	AvailabilityView:    {Manager, Admin},
	AvailabilityCreate:  {Manager, Admin},
	AvailabilityEdit:    {Manager, Admin},
	AvailabilityDelete:  {Manager, Admin},
	AvailabilityApprove: {Manager, Admin},

	LocationView:           {Employee, Manager, Admin},
	LocationCreate:         {Admin},
	LocationEdit:           {Admin},
	LocationDelete:         {Admin},
	LocationManageActivity: {Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// PermissionsForRole returns the set of permissions granted to role.
func PermissionsForRole(role string) map[string]bool {
	perms := make(map[string]bool)
	for perm := range PermissionRoles {
		if AllowedRole(perm, role) {
			perms[perm] = true
		}
	}
	return perms
}
