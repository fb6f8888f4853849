package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// CheckIn inserts the day's record with status present. The unique index on
// (tenant_id, employee_id, work_date) backs the at-most-one invariant, so of
// two concurrent check-ins exactly one row wins.
func (s *Store) CheckIn(ctx context.Context, tenantID, employeeID string, ts time.Time) (string, error) {
	day := DayOf(ts)
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance_records (tenant_id, employee_id, work_date, status, check_in_at)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (tenant_id, employee_id, work_date) DO NOTHING
    RETURNING id
  `, tenantID, employeeID, day, StatusPresent, ts).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrAlreadyCheckedIn
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// CheckOut sets the check-out time exactly once. The conditional update keeps
// a concurrent second check-out from overwriting the first.
func (s *Store) CheckOut(ctx context.Context, tenantID, employeeID string, ts time.Time) error {
	day := DayOf(ts)
	var checkIn *time.Time
	var checkOut *time.Time
	err := s.DB.QueryRow(ctx, `
    SELECT check_in_at, check_out_at
    FROM attendance_records
    WHERE tenant_id = $1 AND employee_id = $2 AND work_date = $3
  `, tenantID, employeeID, day).Scan(&checkIn, &checkOut)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoCheckInFound
	}
	if err != nil {
		return err
	}
	if checkIn == nil {
		return ErrNoCheckInFound
	}
	if checkOut != nil {
		return ErrAlreadyCheckedOut
	}
	if err := ValidateCheckOut(*checkIn, ts); err != nil {
		return err
	}

	cmd, err := s.DB.Exec(ctx, `
    UPDATE attendance_records
    SET check_out_at = $1
    WHERE tenant_id = $2 AND employee_id = $3 AND work_date = $4 AND check_out_at IS NULL
  `, ts, tenantID, employeeID, day)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlreadyCheckedOut
	}
	return nil
}

// RecordDay lets an admin register a non-present day (sick, alpha, permit,
// leave) under the same per-day uniqueness rule.
func (s *Store) RecordDay(ctx context.Context, tenantID, employeeID string, day time.Time, status, note string) (string, error) {
	if !ValidStatus(status) {
		return "", ErrInvalidStatus
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance_records (tenant_id, employee_id, work_date, status, note)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (tenant_id, employee_id, work_date) DO NOTHING
    RETURNING id
  `, tenantID, employeeID, DayOf(day), status, note).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrAlreadyCheckedIn
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// History returns the employee's records in the inclusive window, newest first.
func (s *Store) History(ctx context.Context, tenantID, employeeID string, from, to time.Time) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, work_date, status, check_in_at, check_out_at, COALESCE(note, ''), created_at
    FROM attendance_records
    WHERE tenant_id = $1 AND employee_id = $2 AND work_date >= $3 AND work_date <= $4
    ORDER BY work_date DESC
  `, tenantID, employeeID, DayOf(from), DayOf(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListByDate returns every employee's record for one day, for the admin roster view.
func (s *Store) ListByDate(ctx context.Context, tenantID string, day time.Time) ([]Record, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, work_date, status, check_in_at, check_out_at, COALESCE(note, ''), created_at
    FROM attendance_records
    WHERE tenant_id = $1 AND work_date = $2
    ORDER BY created_at
  `, tenantID, DayOf(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Store) Today(ctx context.Context, tenantID, employeeID string, now time.Time) (*Record, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, work_date, status, check_in_at, check_out_at, COALESCE(note, ''), created_at
    FROM attendance_records
    WHERE tenant_id = $1 AND employee_id = $2 AND work_date = $3
  `, tenantID, employeeID, DayOf(now))
	var rec Record
	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.WorkDate, &rec.Status, &rec.CheckInAt, &rec.CheckOutAt, &rec.Note, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanRecords(rows pgx.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.WorkDate, &rec.Status, &rec.CheckInAt, &rec.CheckOutAt, &rec.Note, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
