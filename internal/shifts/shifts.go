// internal/shifts/shifts.go
package shifts

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"attendance_backend/internal/models"
)

const minutesPerDay = 24 * 60

// ParseClock converts a "15:04" clock string to minutes after midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// inWindow reports whether minute m falls in [open, close), treating
// close <= open as a window that wraps past midnight.
func inWindow(m, open, close int) bool {
	if open == close {
		return false
	}
	if close < open {
		return m >= open || m < close
	}
	return m >= open && m < close
}

// IsOpen reports whether the location's working hours cover the instant.
// The weekday entry of the instant itself is consulted; a close time before
// the open time denotes an overnight window.
func IsOpen(loc models.Location, at time.Time) bool {
	day := loc.Hours[at.Weekday()]
	if day.Closed || day.Open == "" || day.Close == "" {
		return false
	}
	open, err := ParseClock(day.Open)
	if err != nil {
		return false
	}
	close, err := ParseClock(day.Close)
	if err != nil {
		return false
	}
	return inWindow(minuteOfDay(at), open, close)
}

// Available returns every shift of the location whose window
// [start - grace, end) contains the instant, in configured order. Empty when
// the location is not open. Choosing among several is the caller's job.
func Available(loc models.Location, at time.Time) []models.Shift {
	if !IsOpen(loc, at) {
		return nil
	}
	m := minuteOfDay(at)
	var out []models.Shift
	for _, sh := range loc.Shifts {
		start, err := ParseClock(sh.StartTime)
		if err != nil {
			continue
		}
		end, err := ParseClock(sh.EndTime)
		if err != nil {
			continue
		}
		windowStart := ((start-sh.GraceMinutes)%minutesPerDay + minutesPerDay) % minutesPerDay
		if inWindow(m, windowStart, end) {
			out = append(out, sh)
		}
	}
	return out
}

// CloseAt resolves the location's close time for the working day containing
// checkIn, as an absolute instant. Overnight windows close on the next
// calendar day. Returns false when the weekday has no usable entry.
func CloseAt(loc models.Location, checkIn time.Time) (time.Time, bool) {
	day := loc.Hours[checkIn.Weekday()]
	if day.Closed || day.Open == "" || day.Close == "" {
		return time.Time{}, false
	}
	open, err := ParseClock(day.Open)
	if err != nil {
		return time.Time{}, false
	}
	close, err := ParseClock(day.Close)
	if err != nil {
		return time.Time{}, false
	}
	closeAt := atMinute(checkIn, close)
	if close <= open || closeAt.Before(checkIn) {
		closeAt = closeAt.AddDate(0, 0, 1)
	}
	return closeAt, true
}

// ShiftEndAt resolves the shift's end time for the working day containing
// checkIn, as an absolute instant. An end at or before the check-in's clock
// time means the shift wraps past midnight.
func ShiftEndAt(sh models.Shift, checkIn time.Time) (time.Time, bool) {
	end, err := ParseClock(sh.EndTime)
	if err != nil {
		return time.Time{}, false
	}
	endAt := atMinute(checkIn, end)
	if !endAt.After(checkIn) {
		endAt = endAt.AddDate(0, 0, 1)
	}
	return endAt, true
}

// ShiftStartAt resolves the shift's start time on the calendar day of the
// instant. A check-in slightly before midnight for a wrapping shift keeps
// the same day's start.
func ShiftStartAt(sh models.Shift, checkIn time.Time) (time.Time, bool) {
	start, err := ParseClock(sh.StartTime)
	if err != nil {
		return time.Time{}, false
	}
	startAt := atMinute(checkIn, start)
	// Grace-period check-ins land before the nominal start; anything further
	// out than the grace window belongs to the previous day's occurrence.
	if startAt.Sub(checkIn) > time.Duration(sh.GraceMinutes)*time.Minute {
		startAt = startAt.AddDate(0, 0, -1)
	}
	return startAt, true
}

func atMinute(ref time.Time, minute int) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), minute/60, minute%60, 0, 0, ref.Location())
}
