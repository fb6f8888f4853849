package core

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"

	EmployeeStatusInterview = "interview"
	EmployeeStatusActive    = "active"
	EmployeeStatusContract  = "contract"
	EmployeeStatusInactive  = "inactive"
)

var employeeStatuses = map[string]struct{}{
	EmployeeStatusInterview: {},
	EmployeeStatusActive:    {},
	EmployeeStatusContract:  {},
	EmployeeStatusInactive:  {},
}

// ValidEmployeeStatus reports whether status belongs to the closed lifecycle set.
func ValidEmployeeStatus(status string) bool {
	_, ok := employeeStatuses[status]
	return ok
}

// EmployeeStatuses lists the closed lifecycle set for payload validation.
var EmployeeStatuses = []string{
	EmployeeStatusInterview,
	EmployeeStatusActive,
	EmployeeStatusContract,
	EmployeeStatusInactive,
}
