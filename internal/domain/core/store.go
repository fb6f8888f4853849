package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cryptoutil "talenthub/internal/platform/crypto"
)

type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

func (s *Store) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM role_permissions rp
    JOIN permissions p ON rp.permission_id = p.id
    WHERE rp.role_id = $1 AND p.key = $2
  `, roleID, permission).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

const employeeColumns = `
    id,
    COALESCE(user_id::text, ''),
    full_name,
    COALESCE(nickname, ''),
    email,
    COALESCE(phone, ''),
    COALESCE(venue_id::text, ''),
    status,
    join_date,
    COALESCE(bank_account, ''),
    bank_account_enc,
    COALESCE(national_id, ''),
    national_id_enc,
    created_at,
    updated_at`

func (s *Store) GetEmployee(ctx context.Context, tenantID, employeeID string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID)
	emp, err := s.scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) GetEmployeeByUserID(ctx context.Context, tenantID, userID string) (*Employee, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE tenant_id = $1 AND user_id = $2
  `, tenantID, userID)
	emp, err := s.scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	return emp, err
}

func (s *Store) EmployeeIDByUserID(ctx context.Context, tenantID, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE tenant_id = $1 AND user_id = $2", tenantID, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployeeNotFound
	}
	return id, err
}

func (s *Store) ListEmployees(ctx context.Context, tenantID, status, venueID string) ([]Employee, error) {
	query := `
    SELECT ` + employeeColumns + `
    FROM employees
    WHERE tenant_id = $1`
	args := []any{tenantID}
	if status != "" {
		args = append(args, status)
		query += " AND status = $2"
	}
	if venueID != "" {
		args = append(args, venueID)
		if len(args) == 2 {
			query += " AND venue_id = $2"
		} else {
			query += " AND venue_id = $3"
		}
	}
	query += " ORDER BY full_name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

func (s *Store) CreateEmployee(ctx context.Context, tenantID string, emp Employee) (string, error) {
	if !ValidEmployeeStatus(emp.Status) {
		return "", ErrInvalidStatus
	}
	bankEnc, nationalEnc := s.encryptSensitive(emp)
	var bankPlain, nationalPlain any = emp.BankAccount, emp.NationalID
	if s.Crypto != nil && s.Crypto.Configured() {
		bankPlain = nil
		nationalPlain = nil
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (tenant_id, user_id, full_name, nickname, email, phone, venue_id, status, join_date,
      bank_account, bank_account_enc, national_id, national_id_enc)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    RETURNING id
  `,
		tenantID, nullIfEmpty(emp.UserID), emp.FullName, emp.Nickname, emp.Email, emp.Phone,
		nullIfEmpty(emp.VenueID), emp.Status, emp.JoinDate, bankPlain, bankEnc, nationalPlain, nationalEnc,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, tenantID, employeeID string, emp Employee) error {
	if !ValidEmployeeStatus(emp.Status) {
		return ErrInvalidStatus
	}
	bankEnc, nationalEnc := s.encryptSensitive(emp)
	var bankPlain, nationalPlain any = emp.BankAccount, emp.NationalID
	if s.Crypto != nil && s.Crypto.Configured() {
		bankPlain = nil
		nationalPlain = nil
	}
	cmd, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET full_name = $1,
        nickname = $2,
        email = $3,
        phone = $4,
        venue_id = $5,
        status = $6,
        join_date = $7,
        bank_account = $8,
        bank_account_enc = $9,
        national_id = $10,
        national_id_enc = $11,
        updated_at = now()
    WHERE tenant_id = $12 AND id = $13
  `,
		emp.FullName, emp.Nickname, emp.Email, emp.Phone, nullIfEmpty(emp.VenueID), emp.Status, emp.JoinDate,
		bankPlain, bankEnc, nationalPlain, nationalEnc, tenantID, employeeID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// UpdateEmployeeStatus applies a lifecycle transition, rejecting moves outside
// the closed set.
func (s *Store) UpdateEmployeeStatus(ctx context.Context, tenantID, employeeID, next string) error {
	var current string
	err := s.DB.QueryRow(ctx, "SELECT status FROM employees WHERE tenant_id = $1 AND id = $2", tenantID, employeeID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEmployeeNotFound
	}
	if err != nil {
		return err
	}
	if !ValidStatusTransition(current, next) {
		return ErrInvalidTransition
	}
	_, err = s.DB.Exec(ctx, "UPDATE employees SET status = $1, updated_at = now() WHERE tenant_id = $2 AND id = $3", next, tenantID, employeeID)
	return err
}

func (s *Store) ListVenues(ctx context.Context, tenantID string) ([]Venue, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(address, ''), active, created_at
    FROM venues
    WHERE tenant_id = $1
    ORDER BY name
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Venue
	for rows.Next() {
		var v Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.Active, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) CreateVenue(ctx context.Context, tenantID string, v Venue) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO venues (tenant_id, name, address, active)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, tenantID, v.Name, v.Address, v.Active).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanEmployee(row rowScanner) (*Employee, error) {
	var emp Employee
	var bankPlain, nationalPlain string
	var bankEnc, nationalEnc []byte
	if err := row.Scan(
		&emp.ID, &emp.UserID, &emp.FullName, &emp.Nickname, &emp.Email, &emp.Phone,
		&emp.VenueID, &emp.Status, &emp.JoinDate, &bankPlain, &bankEnc, &nationalPlain, &nationalEnc,
		&emp.CreatedAt, &emp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	emp.BankAccount = decryptFallback(s.Crypto, bankEnc, bankPlain)
	emp.NationalID = decryptFallback(s.Crypto, nationalEnc, nationalPlain)
	return &emp, nil
}

func (s *Store) encryptSensitive(emp Employee) ([]byte, []byte) {
	if s.Crypto == nil || !s.Crypto.Configured() {
		return nil, nil
	}
	bankEnc, _ := s.Crypto.EncryptString(emp.BankAccount)
	nationalEnc, _ := s.Crypto.EncryptString(emp.NationalID)
	return bankEnc, nationalEnc
}

func decryptFallback(crypto *cryptoutil.Service, encrypted []byte, plain string) string {
	if crypto == nil || !crypto.Configured() || len(encrypted) == 0 {
		return plain
	}
	decrypted, err := crypto.DecryptString(encrypted)
	if err != nil {
		return plain
	}
	return decrypted
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
