package gamification

import "time"

type Snapshot struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employeeId"`
	Month            int       `json:"month"`
	Year             int       `json:"year"`
	RankScore        float64   `json:"rankScore"`
	AttendanceScore  float64   `json:"attendanceScore"`
	PerformanceScore float64   `json:"performanceScore"`
	CustomerRating   float64   `json:"customerRating"`
	RankPosition     *int      `json:"rankPosition,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Review holds the admin-entered inputs that feed a monthly snapshot
// alongside attendance.
type Review struct {
	EmployeeID       string  `json:"employeeId"`
	Month            int     `json:"month"`
	Year             int     `json:"year"`
	PerformanceScore float64 `json:"performanceScore"`
	CustomerRating   float64 `json:"customerRating"`
}
