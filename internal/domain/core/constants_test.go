package core

import "testing"

func TestValidEmployeeStatus(t *testing.T) {
	for _, status := range EmployeeStatuses {
		if !ValidEmployeeStatus(status) {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if ValidEmployeeStatus("fired") {
		t.Fatal("expected unknown status to be invalid")
	}
}

func TestValidStatusTransition(t *testing.T) {
	allowed := [][2]string{
		{EmployeeStatusInterview, EmployeeStatusActive},
		{EmployeeStatusInterview, EmployeeStatusContract},
		{EmployeeStatusInterview, EmployeeStatusInactive},
		{EmployeeStatusActive, EmployeeStatusContract},
		{EmployeeStatusActive, EmployeeStatusInactive},
		{EmployeeStatusContract, EmployeeStatusActive},
		{EmployeeStatusContract, EmployeeStatusInactive},
		{EmployeeStatusInactive, EmployeeStatusActive},
		{EmployeeStatusActive, EmployeeStatusActive},
	}
	for _, pair := range allowed {
		if !ValidStatusTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be valid", pair[0], pair[1])
		}
	}

	denied := [][2]string{
		{EmployeeStatusActive, EmployeeStatusInterview},
		{EmployeeStatusContract, EmployeeStatusInterview},
		{EmployeeStatusInactive, EmployeeStatusContract},
		{EmployeeStatusInactive, EmployeeStatusInterview},
		{EmployeeStatusActive, "fired"},
		{"fired", EmployeeStatusActive},
	}
	for _, pair := range denied {
		if ValidStatusTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be rejected", pair[0], pair[1])
		}
	}
}
