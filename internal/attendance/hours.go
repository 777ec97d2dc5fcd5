// internal/attendance/hours.go
package attendance

import (
	"math"
	"time"

	"attendance_backend/internal/models"
	"attendance_backend/internal/shifts"
)

// Hours is the derived outcome of one worked day. Always computed from
// scratch out of the raw timestamps so recomputing with the same inputs
// gives the same answer.
type Hours struct {
	Total       float64
	Overtime    float64
	LateMinutes int
	IsLate      bool
}

// ComputeHours derives worked hours, overtime and lateness. shift may be nil
// for offsite records; standardDayHours is the engine default, overridden by
// the shift when it specifies its own. Totals are rounded to the nearest
// 0.1h; every recomputation path must go through here so the rounding stays
// consistent.
func ComputeHours(checkIn, checkOut time.Time, shift *models.Shift, standardDayHours float64) (Hours, error) {
	if checkOut.Before(checkIn) {
		return Hours{}, InvalidInput("checkout before checkin")
	}

	total := roundTenth(checkOut.Sub(checkIn).Hours())

	std := standardDayHours
	if shift != nil && shift.StandardHours > 0 {
		std = shift.StandardHours
	}
	overtime := roundTenth(math.Max(0, total-std))

	var h = Hours{Total: total, Overtime: overtime}
	if shift != nil {
		if startAt, ok := shifts.ShiftStartAt(*shift, checkIn); ok {
			allowed := startAt.Add(time.Duration(shift.LateToleranceMinutes) * time.Minute)
			if checkIn.After(allowed) {
				h.LateMinutes = int(checkIn.Sub(allowed).Minutes())
				h.IsLate = h.LateMinutes > 0
			}
		}
	}
	return h, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
