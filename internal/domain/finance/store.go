package finance

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// Insert appends one transaction. The ledger is append-only: there is no
// update or delete path.
func (s *Store) Insert(ctx context.Context, tenantID string, tx Transaction) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO financial_transactions (tenant_id, employee_id, type, amount, tx_date, period_month, period_year, description)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, tenantID, tx.EmployeeID, tx.Type, tx.Amount, tx.Date, tx.PeriodMonth, tx.PeriodYear, tx.Description).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) List(ctx context.Context, tenantID, employeeID string, month, year, limit, offset int) ([]Transaction, error) {
	query := `
    SELECT id, employee_id, type, amount, tx_date, period_month, period_year, COALESCE(description, ''), created_at
    FROM financial_transactions
    WHERE tenant_id = $1 AND employee_id = $2`
	args := []any{tenantID, employeeID}
	if month > 0 && year > 0 {
		query += fmt.Sprintf(" AND period_month = $%d AND period_year = $%d", len(args)+1, len(args)+2)
		args = append(args, month, year)
	}
	query += fmt.Sprintf(" ORDER BY tx_date DESC, created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.EmployeeID, &tx.Type, &tx.Amount, &tx.Date, &tx.PeriodMonth, &tx.PeriodYear, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

// MonthlySummary aggregates the period in SQL so the result matches
// ComputeSummary over the same rows.
func (s *Store) MonthlySummary(ctx context.Context, tenantID, employeeID string, month, year int) (Summary, error) {
	var summary Summary
	err := s.DB.QueryRow(ctx, `
    SELECT
      COALESCE(SUM(CASE WHEN type IN ('voucher_income','bonus') THEN amount ELSE 0 END), 0),
      COALESCE(SUM(CASE WHEN type NOT IN ('voucher_income','bonus') THEN amount ELSE 0 END), 0)
    FROM financial_transactions
    WHERE tenant_id = $1 AND employee_id = $2 AND period_month = $3 AND period_year = $4
  `, tenantID, employeeID, month, year).Scan(&summary.TotalIncome, &summary.TotalDeduction)
	if err != nil {
		return Summary{}, err
	}
	summary.NetSalary = summary.TotalIncome - summary.TotalDeduction
	return summary, nil
}
