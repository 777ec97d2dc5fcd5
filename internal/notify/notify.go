// internal/notify/notify.go
package notify

import (
	"log"

	"attendance_backend/internal/models"
)

// Notifier receives best-effort attendance events. Implementations must not
// assume their errors stop anything: the engine swallows every failure.
type Notifier interface {
	CheckedIn(rec *models.AttendanceRecord)
	CheckedOut(rec *models.AttendanceRecord)
	OvertimeFlagged(rec *models.AttendanceRecord)
}

// LogNotifier writes events to the process log. Stand-in for the push
// gateway, which lives outside this service.
type LogNotifier struct{}

func (LogNotifier) CheckedIn(rec *models.AttendanceRecord) {
	log.Printf("notify: employee %d checked in (%s, record %d)", rec.EmployeeID, rec.Mode, rec.ID)
}

func (LogNotifier) CheckedOut(rec *models.AttendanceRecord) {
	log.Printf("notify: employee %d checked out (record %d, %.1fh)", rec.EmployeeID, rec.ID, rec.TotalHours)
}

func (LogNotifier) OvertimeFlagged(rec *models.AttendanceRecord) {
	log.Printf("notify: record %d flagged for overtime approval (employee %d)", rec.ID, rec.EmployeeID)
}

// Discard drops every event. Used in tests.
type Discard struct{}

func (Discard) CheckedIn(*models.AttendanceRecord)       {}
func (Discard) CheckedOut(*models.AttendanceRecord)      {}
func (Discard) OvertimeFlagged(*models.AttendanceRecord) {}
