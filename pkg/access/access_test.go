package access

import (
	"testing"

	"github.com/minhvu-dev/accountshop-backend/pkg/enums"
)

func TestHasPermissionMonotone(t *testing.T) {
	ordered := []enums.Role{enums.RoleUser, enums.RoleSupport, enums.RoleAdmin, enums.RoleSuperadmin}
	for i, holder := range ordered {
		for j, required := range ordered {
			got := HasPermission(holder, required)
			want := i >= j
			if got != want {
				t.Fatalf("HasPermission(%s, %s) = %v, want %v", holder, required, got, want)
			}
		}
	}
}

func TestHasPermissionUserCannotActAsAdmin(t *testing.T) {
	if HasPermission(enums.RoleUser, enums.RoleAdmin) {
		t.Fatal("user must not satisfy admin requirement")
	}
}

func TestUnknownRoleNeverGrants(t *testing.T) {
	if HasPermission(enums.Role("moderator"), enums.RoleUser) {
		t.Fatal("unknown role must rank below every known role")
	}
	if HasPermission(enums.Role(""), enums.Role("")) {
		t.Fatal("unknown required role must not be satisfiable by unknown holder")
	}
}
