package finance

import "time"

type Transaction struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	PeriodMonth int       `json:"periodMonth"`
	PeriodYear  int       `json:"periodYear"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Summary struct {
	TotalIncome    float64 `json:"totalIncome"`
	TotalDeduction float64 `json:"totalDeduction"`
	NetSalary      float64 `json:"netSalary"`
}
