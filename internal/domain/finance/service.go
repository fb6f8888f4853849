package finance

import (
	"context"
	"time"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

// RecordTransaction validates and appends one ledger entry. When the period
// is left zero it is derived from the transaction date; an explicitly set
// period is taken as-is, which allows off-period corrections, but a
// half-set period is rejected rather than silently defaulted.
func (s *Service) RecordTransaction(ctx context.Context, tenantID string, tx Transaction) (string, error) {
	if !ValidType(tx.Type) {
		return "", ErrInvalidType
	}
	if tx.Amount <= 0 {
		return "", ErrInvalidAmount
	}
	if tx.Date.IsZero() {
		tx.Date = time.Now().UTC()
	}
	switch {
	case tx.PeriodMonth == 0 && tx.PeriodYear == 0:
		tx.PeriodMonth = int(tx.Date.Month())
		tx.PeriodYear = tx.Date.Year()
	case tx.PeriodMonth == 0 || tx.PeriodYear == 0:
		return "", ErrInvalidPeriod
	case tx.PeriodMonth < 1 || tx.PeriodMonth > 12:
		return "", ErrInvalidPeriod
	}
	return s.Store.Insert(ctx, tenantID, tx)
}

func (s *Service) MonthlySummary(ctx context.Context, tenantID, employeeID string, month, year int) (Summary, error) {
	if month < 1 || month > 12 || year <= 0 {
		return Summary{}, ErrInvalidPeriod
	}
	return s.Store.MonthlySummary(ctx, tenantID, employeeID, month, year)
}

func (s *Service) List(ctx context.Context, tenantID, employeeID string, month, year, limit, offset int) ([]Transaction, error) {
	return s.Store.List(ctx, tenantID, employeeID, month, year, limit, offset)
}
