package reports

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jung-kurt/gofpdf"

	"talenthub/internal/domain/finance"
)

// RegisterRow is one employee line of the monthly salary register.
type RegisterRow struct {
	EmployeeID     string  `json:"employeeId"`
	FullName       string  `json:"fullName"`
	Nickname       string  `json:"nickname,omitempty"`
	TotalIncome    float64 `json:"totalIncome"`
	TotalDeduction float64 `json:"totalDeduction"`
	NetSalary      float64 `json:"netSalary"`
}

type Service struct {
	DB *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// SalaryRegister aggregates one period's ledger per employee. Employees
// with no transactions in the period are omitted.
func (s *Service) SalaryRegister(ctx context.Context, tenantID string, month, year int) ([]RegisterRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, e.full_name, COALESCE(e.nickname, ''),
           COALESCE(SUM(CASE WHEN t.type IN ('voucher_income','bonus') THEN t.amount ELSE 0 END), 0),
           COALESCE(SUM(CASE WHEN t.type NOT IN ('voucher_income','bonus') THEN t.amount ELSE 0 END), 0)
    FROM financial_transactions t
    JOIN employees e ON e.id = t.employee_id AND e.tenant_id = t.tenant_id
    WHERE t.tenant_id = $1 AND t.period_month = $2 AND t.period_year = $3
    GROUP BY e.id, e.full_name, e.nickname
    ORDER BY e.full_name ASC
  `, tenantID, month, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RegisterRow
	for rows.Next() {
		var r RegisterRow
		if err := rows.Scan(&r.EmployeeID, &r.FullName, &r.Nickname, &r.TotalIncome, &r.TotalDeduction); err != nil {
			return nil, err
		}
		r.NetSalary = r.TotalIncome - r.TotalDeduction
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Service) WriteRegisterCSV(w io.Writer, regRows []RegisterRow, month, year int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"employee_id", "full_name", "nickname", "total_income", "total_deduction", "net_salary"}); err != nil {
		return err
	}
	for _, r := range regRows {
		record := []string{
			r.EmployeeID,
			r.FullName,
			r.Nickname,
			fmt.Sprintf("%.2f", r.TotalIncome),
			fmt.Sprintf("%.2f", r.TotalDeduction),
			fmt.Sprintf("%.2f", r.NetSalary),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// StatementPDF renders one employee's salary statement for a period and
// streams it to w.
func (s *Service) StatementPDF(ctx context.Context, w io.Writer, tenantID, employeeID string, month, year int) error {
	var fullName, email string
	err := s.DB.QueryRow(ctx, `
    SELECT full_name, COALESCE(email, '') FROM employees WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&fullName, &email)
	if err != nil {
		return err
	}

	txRows, err := s.DB.Query(ctx, `
    SELECT type, amount, tx_date, COALESCE(description, '')
    FROM financial_transactions
    WHERE tenant_id = $1 AND employee_id = $2 AND period_month = $3 AND period_year = $4
    ORDER BY tx_date ASC, created_at ASC
  `, tenantID, employeeID, month, year)
	if err != nil {
		return err
	}
	defer txRows.Close()

	var lines []finance.Line
	type statementLine struct {
		txType      string
		amount      float64
		date        time.Time
		description string
	}
	var detail []statementLine
	for txRows.Next() {
		var l statementLine
		if err := txRows.Scan(&l.txType, &l.amount, &l.date, &l.description); err != nil {
			return err
		}
		detail = append(detail, l)
		lines = append(lines, finance.Line{Type: l.txType, Amount: l.amount})
	}
	if err := txRows.Err(); err != nil {
		return err
	}
	summary := finance.ComputeSummary(lines)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Salary Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", fullName))
	pdf.Ln(7)
	if email != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Email: %s", email))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Period: %04d-%02d", year, month))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(30, 7, "Date", "1", 0, "", false, 0, "")
	pdf.CellFormat(50, 7, "Type", "1", 0, "", false, 0, "")
	pdf.CellFormat(30, 7, "Amount", "1", 0, "R", false, 0, "")
	pdf.CellFormat(80, 7, "Description", "1", 1, "", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range detail {
		pdf.CellFormat(30, 7, l.date.Format("2006-01-02"), "1", 0, "", false, 0, "")
		pdf.CellFormat(50, 7, l.txType, "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", l.amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(80, 7, l.description, "1", 1, "", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total income: %.2f", summary.TotalIncome))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Total deductions: %.2f", summary.TotalDeduction))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Net salary: %.2f", summary.NetSalary))

	return pdf.Output(w)
}

// AttendanceMatrix reports per-employee day counts by status for a period.
func (s *Service) AttendanceMatrix(ctx context.Context, tenantID string, month, year int) ([]map[string]any, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	rows, err := s.DB.Query(ctx, `
    SELECT e.id, e.full_name, a.status, COUNT(1)
    FROM attendance_records a
    JOIN employees e ON e.id = a.employee_id AND e.tenant_id = a.tenant_id
    WHERE a.tenant_id = $1 AND a.work_date >= $2 AND a.work_date < $3
    GROUP BY e.id, e.full_name, a.status
    ORDER BY e.full_name ASC
  `, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byEmployee := map[string]map[string]any{}
	var order []string
	for rows.Next() {
		var id, name, status string
		var count int
		if err := rows.Scan(&id, &name, &status, &count); err != nil {
			return nil, err
		}
		entry, ok := byEmployee[id]
		if !ok {
			entry = map[string]any{"employeeId": id, "fullName": name}
			byEmployee[id] = entry
			order = append(order, id)
		}
		entry[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(order))
	for _, id := range order {
		out = append(out, byEmployee[id])
	}
	return out, nil
}
