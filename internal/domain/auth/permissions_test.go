package auth

import "testing"

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestDefaultPermissionsUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		if _, ok := seen[perm]; ok {
			t.Fatalf("duplicate permission %s", perm)
		}
		seen[perm] = struct{}{}
	}
}

func TestAdminHasEveryPermission(t *testing.T) {
	admin := map[string]struct{}{}
	for _, perm := range RolePermissions[RoleAdmin] {
		admin[perm] = struct{}{}
	}
	for _, perm := range DefaultPermissions {
		if _, ok := admin[perm]; !ok {
			t.Fatalf("admin missing permission %s", perm)
		}
	}
}

func TestMemberCannotApproveOrDecide(t *testing.T) {
	for _, perm := range RolePermissions[RoleMember] {
		switch perm {
		case PermShopApprove, PermRecruitingDecide, PermFinanceWrite, PermEmployeesWrite, PermAuditRead:
			t.Fatalf("member must not hold %s", perm)
		}
	}
}
