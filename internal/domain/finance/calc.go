package finance

type Line struct {
	Type   string
	Amount float64
}

// ComputeSummary partitions lines into income and deduction totals.
// Net salary may go negative; nothing clamps it.
func ComputeSummary(lines []Line) Summary {
	var summary Summary
	for _, line := range lines {
		switch {
		case IsIncome(line.Type):
			summary.TotalIncome += line.Amount
		case IsDeduction(line.Type):
			summary.TotalDeduction += line.Amount
		}
	}
	summary.NetSalary = summary.TotalIncome - summary.TotalDeduction
	return summary
}

// Add merges two summaries. Summaries over disjoint transaction sets of the
// same period are additive.
func (s Summary) Add(other Summary) Summary {
	return Summary{
		TotalIncome:    s.TotalIncome + other.TotalIncome,
		TotalDeduction: s.TotalDeduction + other.TotalDeduction,
		NetSalary:      s.NetSalary + other.NetSalary,
	}
}
