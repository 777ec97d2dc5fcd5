// internal/matcher/matcher.go
package matcher

import (
	"fmt"
	"time"

	"attendance_backend/internal/geo"
	"attendance_backend/internal/models"
	"attendance_backend/internal/shifts"
)

// Result is the outcome of one check-in authorization. Either Allowed is
// true and Mode/Primary/Shifts describe the match, or Allowed is false and
// Reason says why in user-facing terms.
type Result struct {
	Allowed bool
	Reason  string

	Mode    models.CheckinMode
	Primary *models.Location

	// WithinIDs are all geofences the point fell inside, permitted or not.
	WithinIDs models.UintSlice

	// Shifts are the checkable candidates at the primary location. Selected
	// is set when exactly one qualifies; with several the caller must ask
	// the user to choose.
	Shifts   []models.Shift
	Selected *models.Shift
}

// Authorize runs the geofence + shift decision for a check-in attempt.
// The only error condition is invalid coordinates; policy denials come back
// as a Result with Allowed=false.
func Authorize(p geo.Point, at time.Time, locations []models.Location, allowedIDs models.UintSlice, allowOutside bool) (Result, error) {
	ranked, err := geo.Rank(p, locations)
	if err != nil {
		return Result{}, err
	}

	var inRange []geo.Ranked
	withinIDs := models.UintSlice{}
	for _, r := range ranked {
		if r.InRange() {
			inRange = append(inRange, r)
			withinIDs = append(withinIDs, r.Location.ID)
		}
	}

	var permitted []geo.Ranked
	for _, r := range inRange {
		if allowedIDs.Contains(r.Location.ID) {
			permitted = append(permitted, r)
		}
	}

	switch {
	case len(permitted) > 0:
		primary := permitted[0].Location
		res := Result{
			Allowed:   true,
			Mode:      models.ModeOnsite,
			Primary:   &primary,
			WithinIDs: withinIDs,
			Reason:    fmt.Sprintf("inside %s", primary.Name),
		}
		return attachShifts(res, at)

	case allowOutside:
		reason := "offsite check-in"
		if len(inRange) > 0 {
			reason = fmt.Sprintf("offsite check-in near %s", inRange[0].Location.Name)
		}
		return Result{
			Allowed:   true,
			Mode:      models.ModeOffsite,
			WithinIDs: withinIDs,
			Reason:    reason,
		}, nil

	case len(inRange) > 0:
		return Result{
			Allowed:   false,
			WithinIDs: withinIDs,
			Reason:    fmt.Sprintf("you are at %s but not assigned to it", inRange[0].Location.Name),
		}, nil

	default:
		return Result{
			Allowed:   false,
			WithinIDs: withinIDs,
			Reason:    "not within any permitted area",
		}, nil
	}
}

// attachShifts narrows an onsite authorization by the primary location's
// shift windows: no open shift turns the geofence pass into a denial.
func attachShifts(res Result, at time.Time) (Result, error) {
	candidates := shifts.Available(*res.Primary, at)
	if len(candidates) == 0 {
		return Result{
			Allowed:   false,
			WithinIDs: res.WithinIDs,
			Reason:    fmt.Sprintf("%s has no open shift right now", res.Primary.Name),
		}, nil
	}
	res.Shifts = candidates
	if len(candidates) == 1 {
		res.Selected = &candidates[0]
	}
	return res, nil
}
