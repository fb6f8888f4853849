package gamification

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSnapshotNotFound = errors.New("gamification snapshot not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Get(ctx context.Context, tenantID, employeeID string, month, year int) (*Snapshot, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT id, employee_id, month, year, rank_score, attendance_score, performance_score, customer_rating, rank_position, created_at
    FROM gamification_snapshots
    WHERE tenant_id = $1 AND employee_id = $2 AND month = $3 AND year = $4
  `, tenantID, employeeID, month, year)
	var snap Snapshot
	err := row.Scan(&snap.ID, &snap.EmployeeID, &snap.Month, &snap.Year, &snap.RankScore,
		&snap.AttendanceScore, &snap.PerformanceScore, &snap.CustomerRating, &snap.RankPosition, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *Store) Upsert(ctx context.Context, tenantID string, snap Snapshot) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO gamification_snapshots (tenant_id, employee_id, month, year, rank_score, attendance_score, performance_score, customer_rating)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    ON CONFLICT (tenant_id, employee_id, month, year)
    DO UPDATE SET rank_score = EXCLUDED.rank_score,
                  attendance_score = EXCLUDED.attendance_score,
                  performance_score = EXCLUDED.performance_score,
                  customer_rating = EXCLUDED.customer_rating
  `, tenantID, snap.EmployeeID, snap.Month, snap.Year, snap.RankScore, snap.AttendanceScore, snap.PerformanceScore, snap.CustomerRating)
	return err
}

// TopPerformers orders by rank score descending; equal scores keep insertion
// order via created_at, id.
func (s *Store) TopPerformers(ctx context.Context, tenantID string, month, year, limit int) ([]Snapshot, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, month, year, rank_score, attendance_score, performance_score, customer_rating, rank_position, created_at
    FROM gamification_snapshots
    WHERE tenant_id = $1 AND month = $2 AND year = $3
    ORDER BY rank_score DESC, created_at ASC, id ASC
    LIMIT $4
  `, tenantID, month, year, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.EmployeeID, &snap.Month, &snap.Year, &snap.RankScore,
			&snap.AttendanceScore, &snap.PerformanceScore, &snap.CustomerRating, &snap.RankPosition, &snap.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// AssignPositions renumbers rank_position for the period cohort using the
// leaderboard ordering.
func (s *Store) AssignPositions(ctx context.Context, tenantID string, month, year int) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE gamification_snapshots g
    SET rank_position = ranked.pos
    FROM (
      SELECT id, ROW_NUMBER() OVER (ORDER BY rank_score DESC, created_at ASC, id ASC) AS pos
      FROM gamification_snapshots
      WHERE tenant_id = $1 AND month = $2 AND year = $3
    ) ranked
    WHERE g.id = ranked.id
  `, tenantID, month, year)
	return err
}

func (s *Store) UpsertReview(ctx context.Context, tenantID string, review Review) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employee_reviews (tenant_id, employee_id, month, year, performance_score, customer_rating)
    VALUES ($1,$2,$3,$4,$5,$6)
    ON CONFLICT (tenant_id, employee_id, month, year)
    DO UPDATE SET performance_score = EXCLUDED.performance_score,
                  customer_rating = EXCLUDED.customer_rating
  `, tenantID, review.EmployeeID, review.Month, review.Year, review.PerformanceScore, review.CustomerRating)
	return err
}

func (s *Store) GetReview(ctx context.Context, tenantID, employeeID string, month, year int) (*Review, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT employee_id, month, year, performance_score, customer_rating
    FROM employee_reviews
    WHERE tenant_id = $1 AND employee_id = $2 AND month = $3 AND year = $4
  `, tenantID, employeeID, month, year)
	var review Review
	err := row.Scan(&review.EmployeeID, &review.Month, &review.Year, &review.PerformanceScore, &review.CustomerRating)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}
