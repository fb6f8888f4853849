package core

import "talenthub/internal/domain/auth"

// FilterEmployeeFields blanks sensitive fields the viewer is not allowed
// to see. Members only see their own bank account and national id.
func FilterEmployeeFields(emp *Employee, viewer auth.UserContext, isSelf bool) {
	if emp == nil {
		return
	}
	if viewer.RoleName == auth.RoleAdmin || viewer.RoleName == auth.RoleManager || isSelf {
		return
	}
	emp.BankAccount = ""
	emp.NationalID = ""
	emp.Phone = ""
}
