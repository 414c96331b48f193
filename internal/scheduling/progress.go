package scheduling

import (
	"math"
	"time"
)

// AttendancePercentage is attended/total*100 rounded to two decimals and
// clamped to [0, 100].
func AttendancePercentage(attended, total int) float64 {
	if total <= 0 || attended <= 0 {
		return 0
	}
	pct := float64(attended) / float64(total) * 100
	pct = math.Round(pct*100) / 100
	return math.Min(pct, 100)
}

// Progress is the attendance percentage, held at 0 until the enrollment date
// has been reached.
func Progress(attended, total int, enrollmentDate, today time.Time) float64 {
	if DateOnly(today).Before(DateOnly(enrollmentDate)) {
		return 0
	}
	return AttendancePercentage(attended, total)
}

func IsEligible(percentage, threshold float64) bool {
	return percentage >= threshold
}

func Grade(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A+"
	case percentage >= 85:
		return "A"
	case percentage >= 80:
		return "A-"
	default:
		return "Pass"
	}
}
