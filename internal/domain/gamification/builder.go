package gamification

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"talenthub/internal/domain/attendance"
	"talenthub/internal/domain/core"
)

// Builder recomputes the monthly snapshots. It runs from the background job
// scheduler and from the admin-triggered rebuild endpoint; employees only
// ever read the stored result.
type Builder struct {
	DB         *pgxpool.Pool
	Snapshots  *Store
	Attendance *attendance.Store
}

func NewBuilder(db *pgxpool.Pool, snapshots *Store, att *attendance.Store) *Builder {
	return &Builder{DB: db, Snapshots: snapshots, Attendance: att}
}

// BuildMonth rebuilds every working employee's snapshot for the period and
// reassigns leaderboard positions. Returns the number of snapshots written.
func (b *Builder) BuildMonth(ctx context.Context, tenantID string, month, year int) (int, error) {
	rows, err := b.DB.Query(ctx, `
    SELECT id
    FROM employees
    WHERE tenant_id = $1 AND status IN ($2, $3)
  `, tenantID, core.EmployeeStatusActive, core.EmployeeStatusContract)
	if err != nil {
		return 0, err
	}
	var employeeIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		employeeIDs = append(employeeIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	written := 0
	for _, employeeID := range employeeIDs {
		records, err := b.Attendance.History(ctx, tenantID, employeeID, from, to)
		if err != nil {
			return written, err
		}
		attendanceScore := attendance.PresenceRatio(records) * 100

		var performanceScore, customerRating float64
		review, err := b.Snapshots.GetReview(ctx, tenantID, employeeID, month, year)
		if err != nil {
			return written, err
		}
		if review != nil {
			performanceScore = review.PerformanceScore
			customerRating = review.CustomerRating
		}

		snap := Snapshot{
			EmployeeID:       employeeID,
			Month:            month,
			Year:             year,
			RankScore:        ComputeRankScore(attendanceScore, performanceScore, customerRating),
			AttendanceScore:  attendanceScore,
			PerformanceScore: performanceScore,
			CustomerRating:   customerRating,
		}
		if err := b.Snapshots.Upsert(ctx, tenantID, snap); err != nil {
			return written, err
		}
		written++
	}

	if err := b.Snapshots.AssignPositions(ctx, tenantID, month, year); err != nil {
		return written, err
	}
	return written, nil
}
