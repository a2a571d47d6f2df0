package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminHoldsEveryPermission(t *testing.T) {
	perms := PermissionsForRole(Admin)
	for perm := range PermissionRoles {
		assert.True(t, perms[perm], perm)
	}
}

func TestManagerPermissions(t *testing.T) {
	perms := PermissionsForRole(Manager)
	assert.True(t, perms[AvailabilityApprove])
	assert.True(t, perms[InvitationCreate])
	assert.True(t, perms[LocationView])
	assert.False(t, perms[InvitationManage])
	assert.False(t, perms[LocationCreate])
}

func TestEmployeePermissions(t *testing.T) {
	assert.Equal(t, map[string]bool{LocationView: true}, PermissionsForRole(Employee))
	assert.Empty(t, PermissionsForRole("unknown"))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(Manager))
	assert.False(t, IsValidRole("superadmin"))
}
