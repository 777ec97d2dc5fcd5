// internal/attendance/service.go
package attendance

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"attendance_backend/internal/config"
	"attendance_backend/internal/geo"
	"attendance_backend/internal/matcher"
	"attendance_backend/internal/models"
	"attendance_backend/internal/notify"
	"attendance_backend/internal/shifts"
)

const dayLayout = "2006-01-02"

// Service owns the attendance record lifecycle: authorize + open on
// check-in, close on check-out or sweep, resolve exceptions. All terminal
// transitions run through the store's conditional updates, so a sweep and an
// interactive checkout racing on the same record produce one winner and one
// ErrNotCheckedIn.
type Service struct {
	store     Store
	locations LocationDirectory
	users     UserDirectory
	notifier  notify.Notifier
	cfg       config.Engine

	// Now is the injectable clock. Tests pin it.
	Now func() time.Time

	mu       sync.Mutex
	inFlight map[uint]struct{}
}

func NewService(store Store, locations LocationDirectory, users UserDirectory, notifier notify.Notifier, cfg config.Engine) *Service {
	return &Service{
		store:     store,
		locations: locations,
		users:     users,
		notifier:  notifier,
		cfg:       cfg,
		Now:       time.Now,
		inFlight:  make(map[uint]struct{}),
	}
}

// DayKey is the calendar-day bucket for an instant, in server-local time.
func DayKey(t time.Time) string { return t.Format(dayLayout) }

// begin claims the per-user authorization slot. A second attempt while one
// is running is rejected rather than run in parallel.
func (s *Service) begin(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[userID]; busy {
		return false
	}
	s.inFlight[userID] = struct{}{}
	return true
}

func (s *Service) end(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, userID)
}

// Authorize runs the geofence + shift decision without creating anything.
// Used by clients to preview shift candidates before committing a check-in.
func (s *Service) Authorize(ctx context.Context, userID, companyID uint, p geo.Point) (matcher.Result, error) {
	if !s.begin(userID) {
		return matcher.Result{}, ErrAuthorizationInFlight
	}
	defer s.end(userID)
	return s.authorize(ctx, userID, companyID, p, s.Now())
}

func (s *Service) authorize(ctx context.Context, userID, companyID uint, p geo.Point, at time.Time) (matcher.Result, error) {
	perms, err := s.users.Permissions(ctx, userID)
	if err != nil {
		// Fail closed: a broken permission lookup is a denial, never
		// "no restriction".
		return matcher.Result{}, Unavailable("permission lookup failed")
	}
	locs, err := s.locations.ActiveLocations(ctx, companyID)
	if err != nil {
		return matcher.Result{}, Unavailable("location directory unavailable")
	}
	res, err := matcher.Authorize(p, at, locs, perms.AllowedLocationIDs, perms.AllowOutside)
	if err != nil {
		return matcher.Result{}, InvalidInput(err.Error())
	}
	return res, nil
}

// CheckIn authorizes and opens the day's record. shiftID picks among the
// candidates when more than one shift is open; with exactly one it may be
// nil. The matcher result is returned alongside the record so callers can
// surface shift candidates when selection is still needed. No record is
// created unless authorization fully succeeds.
func (s *Service) CheckIn(ctx context.Context, userID, companyID uint, p geo.Point, shiftID *uint, note string) (*models.AttendanceRecord, matcher.Result, error) {
	if !s.begin(userID) {
		return nil, matcher.Result{}, ErrAuthorizationInFlight
	}
	defer s.end(userID)

	now := s.Now()
	day := DayKey(now)

	if _, err := s.store.OpenForDay(ctx, userID, day); err == nil {
		return nil, matcher.Result{}, ErrAlreadyCheckedIn
	} else if !errors.Is(err, ErrNotFound) {
		return nil, matcher.Result{}, Unavailable("attendance store unavailable")
	}

	res, err := s.authorize(ctx, userID, companyID, p, now)
	if err != nil {
		return nil, matcher.Result{}, err
	}
	if !res.Allowed {
		return nil, res, Denied(res.Reason)
	}

	var selected *models.Shift
	if res.Mode == models.ModeOnsite {
		selected = res.Selected
		if selected == nil {
			if shiftID == nil {
				return nil, res, InvalidInput("shift selection required")
			}
			for i := range res.Shifts {
				if res.Shifts[i].ID == *shiftID {
					selected = &res.Shifts[i]
					break
				}
			}
			if selected == nil {
				return nil, res, InvalidInput("selected shift is not available")
			}
		}
	}

	rec := &models.AttendanceRecord{
		CompanyID:         companyID,
		EmployeeID:        userID,
		Day:               day,
		CheckInAt:         now,
		CheckInLat:        p.Latitude,
		CheckInLng:        p.Longitude,
		WithinLocationIDs: res.WithinIDs,
		Mode:              res.Mode,
		AuthReason:        res.Reason,
		Status:            models.AttendanceCheckedIn,
		Note:              note,
	}
	if res.Primary != nil {
		id := res.Primary.ID
		rec.LocationID = &id
	}
	if selected != nil {
		id := selected.ID
		rec.ShiftID = &id
	}

	if err := s.store.Create(ctx, rec); err != nil {
		var de *Error
		if errors.As(err, &de) {
			return nil, res, de
		}
		return nil, res, Unavailable("attendance store unavailable")
	}

	s.fireAndForget(func() { s.notifier.CheckedIn(rec) })
	return rec, res, nil
}

// CheckOut closes an open record interactively. Landing more than the
// configured tolerance past the location close time parks the record in
// PENDING_APPROVAL with the overtime flag set instead of completing it.
func (s *Service) CheckOut(ctx context.Context, recordID uint, at time.Time, p *geo.Point) (*models.AttendanceRecord, error) {
	rec, err := s.load(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.AttendanceCheckedIn {
		return nil, ErrNotCheckedIn
	}
	if at.Before(rec.CheckInAt) {
		return nil, InvalidInput("checkout before checkin")
	}

	loc, shift, err := s.recordContext(ctx, rec)
	if err != nil {
		return nil, err
	}

	h, err := ComputeHours(rec.CheckInAt, at, shift, s.cfg.StandardDayHours)
	if err != nil {
		return nil, err
	}

	status := models.AttendanceCompleted
	needsApproval := false
	if loc != nil {
		if closeAt, ok := shifts.CloseAt(*loc, rec.CheckInAt); ok {
			tolerance := time.Duration(s.cfg.OvertimeToleranceMinutes) * time.Minute
			if at.After(closeAt.Add(tolerance)) {
				status = models.AttendancePendingApproval
				needsApproval = true
			}
		}
	}

	s.applyClose(rec, at, p, h, status)
	rec.NeedsOvertimeApproval = needsApproval

	rows, err := s.store.CloseFromCheckedIn(ctx, rec)
	if err != nil {
		return nil, Unavailable("attendance store unavailable")
	}
	if rows == 0 {
		// Someone else (the sweep, most likely) closed it first.
		return nil, ErrNotCheckedIn
	}

	s.fireAndForget(func() { s.notifier.CheckedOut(rec) })
	if needsApproval {
		s.fireAndForget(func() { s.notifier.OvertimeFlagged(rec) })
	}
	return rec, nil
}

// AutoClose is the sweep's close: same mechanics as CheckOut but the record
// is marked as a forgotten checkout and always lands in PENDING_APPROVAL,
// waiting for a human to confirm the real checkout time.
func (s *Service) AutoClose(ctx context.Context, recordID uint, fallback time.Time, reason string) (*models.AttendanceRecord, error) {
	rec, err := s.load(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.AttendanceCheckedIn {
		// Re-running the sweep over an already-closed record is a no-op.
		return nil, ErrNotCheckedIn
	}
	if fallback.Before(rec.CheckInAt) {
		fallback = rec.CheckInAt
	}

	_, shift, err := s.recordContext(ctx, rec)
	if err != nil {
		return nil, err
	}
	h, err := ComputeHours(rec.CheckInAt, fallback, shift, s.cfg.StandardDayHours)
	if err != nil {
		return nil, err
	}

	s.applyClose(rec, fallback, nil, h, models.AttendancePendingApproval)
	rec.ForgotCheckout = true
	if reason != "" {
		rec.Note = reason
	}

	rows, err := s.store.CloseFromCheckedIn(ctx, rec)
	if err != nil {
		return nil, Unavailable("attendance store unavailable")
	}
	if rows == 0 {
		return nil, ErrNotCheckedIn
	}

	s.fireAndForget(func() { s.notifier.CheckedOut(rec) })
	return rec, nil
}

// ResolvePending is the audited human correction path: it moves a pending
// (or still-open) record to COMPLETED with an approved checkout instant and
// appends an edit-history entry. Retrying with identical arguments after a
// success is a no-op. With approveOvertime false the counted hours cap at
// the location close time and overtime is zeroed; the recorded checkout
// stays the approved instant.
func (s *Service) ResolvePending(ctx context.Context, recordID uint, approvedAt time.Time, approverID uint, reason string, approveOvertime bool) (*models.AttendanceRecord, error) {
	rec, err := s.load(ctx, recordID)
	if err != nil {
		return nil, err
	}

	if rec.Status == models.AttendanceCompleted {
		last, err := s.store.LastEdit(ctx, recordID)
		if err == nil && last != nil &&
			last.EditorID == approverID &&
			last.NewCheckOutAt.Equal(approvedAt) &&
			last.OvertimeApproved == approveOvertime {
			return rec, nil
		}
		return nil, ErrNotPending
	}
	if rec.Status != models.AttendancePendingApproval && rec.Status != models.AttendanceCheckedIn {
		return nil, ErrNotPending
	}
	if approvedAt.Before(rec.CheckInAt) {
		return nil, InvalidInput("approved checkout before checkin")
	}

	loc, shift, err := s.recordContext(ctx, rec)
	if err != nil {
		return nil, err
	}

	counted := approvedAt
	if !approveOvertime && loc != nil {
		if closeAt, ok := shifts.CloseAt(*loc, rec.CheckInAt); ok && approvedAt.After(closeAt) {
			counted = closeAt
		}
	}
	h, err := ComputeHours(rec.CheckInAt, counted, shift, s.cfg.StandardDayHours)
	if err != nil {
		return nil, err
	}
	if !approveOvertime {
		h.Overtime = 0
	}

	edit := &models.AttendanceEdit{
		RecordID:         rec.ID,
		EditorID:         approverID,
		OldCheckOutAt:    rec.CheckOutAt,
		NewCheckOutAt:    approvedAt,
		Reason:           reason,
		OvertimeApproved: approveOvertime,
	}

	s.applyClose(rec, approvedAt, nil, h, models.AttendanceCompleted)
	rec.NeedsOvertimeApproval = false

	rows, err := s.store.Finalize(ctx, rec, edit)
	if err != nil {
		return nil, Unavailable("attendance store unavailable")
	}
	if rows == 0 {
		return nil, ErrNotPending
	}
	return rec, nil
}

// OpenRecord returns the user's open record for today, or ErrNotFound.
func (s *Service) OpenRecord(ctx context.Context, userID uint) (*models.AttendanceRecord, error) {
	return s.store.OpenForDay(ctx, userID, DayKey(s.Now()))
}

func (s *Service) applyClose(rec *models.AttendanceRecord, at time.Time, p *geo.Point, h Hours, status models.AttendanceStatus) {
	out := at
	rec.CheckOutAt = &out
	if p != nil {
		lat, lng := p.Latitude, p.Longitude
		rec.CheckOutLat = &lat
		rec.CheckOutLng = &lng
	}
	rec.TotalHours = h.Total
	rec.OvertimeHours = h.Overtime
	rec.LateMinutes = h.LateMinutes
	rec.IsLate = h.IsLate
	rec.Status = status
}

func (s *Service) load(ctx context.Context, recordID uint) (*models.AttendanceRecord, error) {
	rec, err := s.store.ByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotCheckedIn
		}
		return nil, Unavailable("attendance store unavailable")
	}
	return rec, nil
}

// recordContext loads the record's location and matched shift. Offsite
// records have neither.
func (s *Service) recordContext(ctx context.Context, rec *models.AttendanceRecord) (*models.Location, *models.Shift, error) {
	if rec.LocationID == nil {
		return nil, nil, nil
	}
	loc, err := s.locations.LocationByID(ctx, *rec.LocationID)
	if err != nil {
		return nil, nil, Unavailable("location directory unavailable")
	}
	var shift *models.Shift
	if rec.ShiftID != nil {
		for i := range loc.Shifts {
			if loc.Shifts[i].ID == *rec.ShiftID {
				shift = &loc.Shifts[i]
				break
			}
		}
	}
	return loc, shift, nil
}

// fireAndForget runs a notification without letting a failure or panic
// reach the attendance transition.
func (s *Service) fireAndForget(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("notification failed: %v", r)
			}
		}()
		fn()
	}()
}
