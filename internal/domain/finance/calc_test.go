package finance

import "testing"

func TestComputeSummary(t *testing.T) {
	lines := []Line{
		{Type: TypeVoucherIncome, Amount: 3000},
		{Type: TypeBonus, Amount: 500},
		{Type: TypeDeductionLoan, Amount: 200},
		{Type: TypeDeductionStore, Amount: 150},
	}

	summary := ComputeSummary(lines)
	if summary.TotalIncome != 3500 {
		t.Fatalf("expected income 3500, got %v", summary.TotalIncome)
	}
	if summary.TotalDeduction != 350 {
		t.Fatalf("expected deduction 350, got %v", summary.TotalDeduction)
	}
	if summary.NetSalary != 3150 {
		t.Fatalf("expected net 3150, got %v", summary.NetSalary)
	}
}

func TestComputeSummaryIgnoresUnknownTypes(t *testing.T) {
	summary := ComputeSummary([]Line{
		{Type: "mystery", Amount: 999},
		{Type: TypeBonus, Amount: 100},
	})
	if summary.TotalIncome != 100 || summary.TotalDeduction != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestComputeSummaryAllowsNegativeNet(t *testing.T) {
	summary := ComputeSummary([]Line{
		{Type: TypeVoucherIncome, Amount: 100},
		{Type: TypeDeductionLoan, Amount: 250},
	})
	if summary.NetSalary != -150 {
		t.Fatalf("expected net -150, got %v", summary.NetSalary)
	}
}

func TestSummaryAdd(t *testing.T) {
	a := Summary{TotalIncome: 100, TotalDeduction: 30, NetSalary: 70}
	b := Summary{TotalIncome: 50, TotalDeduction: 20, NetSalary: 30}

	merged := a.Add(b)
	if merged.TotalIncome != 150 || merged.TotalDeduction != 50 || merged.NetSalary != 100 {
		t.Fatalf("unexpected merge: %+v", merged)
	}
}

func TestTypePartition(t *testing.T) {
	for _, txType := range Types {
		if !ValidType(txType) {
			t.Fatalf("expected %s to be valid", txType)
		}
		if IsIncome(txType) && IsDeduction(txType) {
			t.Fatalf("type %s is both income and deduction", txType)
		}
	}
	if ValidType("salary") {
		t.Fatal("expected unknown type to be invalid")
	}
}
