package core

import "errors"

var (
	ErrEmployeeNotFound  = errors.New("employee not found")
	ErrInvalidStatus     = errors.New("invalid employee status")
	ErrInvalidTransition = errors.New("invalid employee status transition")
)

// ValidStatusTransition encodes the lifecycle: interview moves to active or
// inactive, active and contract may swap or end, inactive is terminal except
// for re-activation by an admin.
func ValidStatusTransition(from, to string) bool {
	if !ValidEmployeeStatus(from) || !ValidEmployeeStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	switch from {
	case EmployeeStatusInterview:
		return to == EmployeeStatusActive || to == EmployeeStatusContract || to == EmployeeStatusInactive
	case EmployeeStatusActive:
		return to == EmployeeStatusContract || to == EmployeeStatusInactive
	case EmployeeStatusContract:
		return to == EmployeeStatusActive || to == EmployeeStatusInactive
	case EmployeeStatusInactive:
		return to == EmployeeStatusActive
	}
	return false
}
