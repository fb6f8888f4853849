package gamification

// Composite weights: attendance and performance carry 40% each, customer
// rating the remaining 20%.
const (
	weightAttendance  = 0.4
	weightPerformance = 0.4
	weightCustomer    = 0.2
)

// ComputeRankScore derives the 0-100 composite from an attendance score
// (0-100), a performance score (0-100) and a customer rating (0.0-5.0).
// Inputs outside their ranges are clamped rather than rejected, since
// upstream data entry is not trusted to be exact.
func ComputeRankScore(attendanceScore, performanceScore, customerRating float64) float64 {
	attendance := clamp(attendanceScore, 0, 100)
	performance := clamp(performanceScore, 0, 100)
	customer := clamp(customerRating, 0, 5) / 5 * 100
	return clamp(weightAttendance*attendance+weightPerformance*performance+weightCustomer*customer, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
