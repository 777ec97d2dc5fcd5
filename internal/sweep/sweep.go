// internal/sweep/sweep.go
package sweep

import (
	"context"
	"errors"
	"log"
	"time"

	"attendance_backend/internal/attendance"
	"attendance_backend/internal/config"
	"attendance_backend/internal/models"
	"attendance_backend/internal/shifts"
)

// Closure is one record the sweep closed (or would close, in dry-run mode).
type Closure struct {
	RecordID   uint      `json:"record_id"`
	EmployeeID uint      `json:"employee_id"`
	Day        string    `json:"day"`
	Fallback   time.Time `json:"fallback_checkout"`
	Closed     bool      `json:"closed"`
	Skipped    bool      `json:"skipped"`
	Error      string    `json:"error,omitempty"`
}

// Report summarizes one sweep run.
type Report struct {
	DryRun   bool      `json:"dry_run"`
	RanAt    time.Time `json:"ran_at"`
	Scanned  int       `json:"scanned"`
	Closed   int       `json:"closed"`
	Closures []Closure `json:"closures"`
}

// Sweeper auto-closes records left open from previous days. Safe to re-run:
// records another path closed in the meantime are skipped via the state
// machine's conditional transition.
type Sweeper struct {
	Service   *attendance.Service
	Store     attendance.Store
	Locations attendance.LocationDirectory
	Cfg       config.Engine

	// Now is the injectable clock. Tests pin it.
	Now func() time.Time
}

func New(svc *attendance.Service, store attendance.Store, locations attendance.LocationDirectory, cfg config.Engine) *Sweeper {
	return &Sweeper{Service: svc, Store: store, Locations: locations, Cfg: cfg, Now: time.Now}
}

// Run closes every record still open from a day before today. In dry-run
// mode it reports the planned closures without mutating anything.
func (s *Sweeper) Run(ctx context.Context, dryRun bool) (Report, error) {
	now := s.Now()
	report := Report{DryRun: dryRun, RanAt: now}

	open, err := s.Store.OpenBefore(ctx, attendance.DayKey(now))
	if err != nil {
		return report, err
	}
	report.Scanned = len(open)

	for i := range open {
		rec := &open[i]
		c := Closure{
			RecordID:   rec.ID,
			EmployeeID: rec.EmployeeID,
			Day:        rec.Day,
			Fallback:   s.fallbackCheckout(ctx, rec),
		}
		if dryRun {
			report.Closures = append(report.Closures, c)
			continue
		}
		_, err := s.Service.AutoClose(ctx, rec.ID, c.Fallback, "auto-closed by daily sweep")
		switch {
		case err == nil:
			c.Closed = true
			report.Closed++
		case errors.Is(err, attendance.ErrNotCheckedIn):
			// Closed by an interactive checkout or an earlier run.
			c.Skipped = true
		default:
			c.Error = err.Error()
			log.Printf("sweep: record %d: %v", rec.ID, err)
		}
		report.Closures = append(report.Closures, c)
	}
	return report, nil
}

// fallbackCheckout picks the checkout instant the sweep closes with: the
// matched shift's end on the check-in day, else the location close that day,
// else check-in plus a standard day. Never the sweep's own run time.
func (s *Sweeper) fallbackCheckout(ctx context.Context, rec *models.AttendanceRecord) time.Time {
	if rec.LocationID != nil {
		if loc, err := s.Locations.LocationByID(ctx, *rec.LocationID); err == nil {
			if rec.ShiftID != nil {
				for _, sh := range loc.Shifts {
					if sh.ID == *rec.ShiftID {
						if endAt, ok := shifts.ShiftEndAt(sh, rec.CheckInAt); ok {
							return endAt
						}
					}
				}
			}
			if closeAt, ok := shifts.CloseAt(*loc, rec.CheckInAt); ok {
				return closeAt
			}
		}
	}
	return rec.CheckInAt.Add(time.Duration(s.Cfg.StandardDayHours * float64(time.Hour)))
}

// StartDaily fires a full (non-dry) run once a day at the given local time.
func (s *Sweeper) StartDaily(hour, minute int) {
	go func() {
		log.Printf("sweep scheduler started (daily at %02d:%02d)", hour, minute)
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			now := time.Now()
			if now.Hour() == hour && now.Minute() == minute {
				report, err := s.Run(context.Background(), false)
				if err != nil {
					log.Printf("sweep failed: %v", err)
					continue
				}
				log.Printf("sweep done: scanned %d, closed %d", report.Scanned, report.Closed)
			}
		}
	}()
}
