package recruiting

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"talenthub/internal/domain/core"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreatePosting(ctx context.Context, tenantID string, p Posting) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO job_postings (tenant_id, title, description, venue_id, status)
    VALUES ($1,$2,$3,NULLIF($4,''),$5)
    RETURNING id
  `, tenantID, p.Title, p.Description, p.VenueID, PostingOpen).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetPosting(ctx context.Context, tenantID, postingID string) (*Posting, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, title, description, COALESCE(venue_id::text, ''), status, created_at, updated_at
    FROM job_postings
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, postingID)
	var p Posting
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.VenueID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPostings(ctx context.Context, tenantID, status string) ([]Posting, error) {
	query := `
    SELECT id, title, description, COALESCE(venue_id::text, ''), status, created_at, updated_at
    FROM job_postings
    WHERE tenant_id = $1`
	args := []any{tenantID}
	if status != "" {
		args = append(args, status)
		query += " AND status = $2"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Posting
	for rows.Next() {
		var p Posting
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.VenueID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) ClosePosting(ctx context.Context, tenantID, postingID string) error {
	cmd, err := s.DB.Exec(ctx, `
    UPDATE job_postings SET status = $1, updated_at = now() WHERE tenant_id = $2 AND id = $3
  `, PostingClosed, tenantID, postingID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPostingNotFound
	}
	return nil
}

// Apply records a pending application. One application per employee per
// posting, enforced by the unique index and surfaced as ErrAlreadyApplied.
func (s *Store) Apply(ctx context.Context, tenantID, postingID, employeeID, note string) (*Application, error) {
	var status string
	err := s.DB.QueryRow(ctx, `
    SELECT status FROM job_postings WHERE tenant_id = $1 AND id = $2
  `, tenantID, postingID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostingNotFound
	}
	if err != nil {
		return nil, err
	}
	if status != PostingOpen {
		return nil, ErrPostingClosed
	}

	app := Application{
		PostingID:  postingID,
		EmployeeID: employeeID,
		Note:       note,
		Status:     ApplicationPending,
	}
	err = s.DB.QueryRow(ctx, `
    INSERT INTO job_applications (tenant_id, posting_id, employee_id, note, status)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (tenant_id, posting_id, employee_id) DO NOTHING
    RETURNING id, created_at, updated_at
  `, tenantID, postingID, employeeID, note, app.Status).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlreadyApplied
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *Store) ListApplications(ctx context.Context, tenantID, postingID, status string) ([]Application, error) {
	query := `
    SELECT id, posting_id, employee_id, COALESCE(note, ''), status, created_at, updated_at
    FROM job_applications
    WHERE tenant_id = $1`
	args := []any{tenantID}
	if postingID != "" {
		args = append(args, postingID)
		query += " AND posting_id = $2"
	}
	if status != "" {
		args = append(args, status)
		if len(args) == 2 {
			query += " AND status = $2"
		} else {
			query += " AND status = $3"
		}
	}
	query += " ORDER BY created_at ASC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.PostingID, &a.EmployeeID, &a.Note, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Decide moves a pending application to accepted or rejected. Acceptance
// also promotes an interview-stage employee to active in the same
// transaction.
func (s *Store) Decide(ctx context.Context, tenantID, applicationID, decision string) (*Application, error) {
	if decision != ApplicationAccepted && decision != ApplicationRejected {
		return nil, errors.New("decision must be accepted or rejected")
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var a Application
	err = tx.QueryRow(ctx, `
    SELECT id, posting_id, employee_id, COALESCE(note, ''), status, created_at, updated_at
    FROM job_applications
    WHERE tenant_id = $1 AND id = $2
    FOR UPDATE
  `, tenantID, applicationID).Scan(&a.ID, &a.PostingID, &a.EmployeeID, &a.Note, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.Status != ApplicationPending {
		return nil, ErrAlreadyDecided
	}

	if _, err := tx.Exec(ctx, `
    UPDATE job_applications SET status = $1, updated_at = now() WHERE tenant_id = $2 AND id = $3
  `, decision, tenantID, applicationID); err != nil {
		return nil, err
	}

	if decision == ApplicationAccepted {
		if _, err := tx.Exec(ctx, `
      UPDATE employees SET status = $1, updated_at = now()
      WHERE tenant_id = $2 AND id = $3 AND status = $4
    `, core.EmployeeStatusActive, tenantID, a.EmployeeID, core.EmployeeStatusInterview); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	a.Status = decision
	return &a, nil
}
