// internal/attendance/store.go
package attendance

import (
	"context"

	"attendance_backend/internal/models"
)

// Store is the persistence contract for attendance records. Terminal
// transitions go through conditional updates: implementations apply the
// write only when the row is still in the expected state and report how
// many rows changed, so that of two racing closers exactly one wins.
type Store interface {
	// Create inserts a new open record. Returns ErrAlreadyCheckedIn when a
	// record for (employee, day) already exists.
	Create(ctx context.Context, rec *models.AttendanceRecord) error

	// ByID loads one record. Returns ErrNotFound when missing.
	ByID(ctx context.Context, id uint) (*models.AttendanceRecord, error)

	// OpenForDay loads the open record for (employee, day), or ErrNotFound.
	OpenForDay(ctx context.Context, employeeID uint, day string) (*models.AttendanceRecord, error)

	// OpenBefore lists every record still CHECKED_IN with a day key before
	// the given one. Sweep input.
	OpenBefore(ctx context.Context, day string) ([]models.AttendanceRecord, error)

	// CloseFromCheckedIn persists the record's close fields only if the
	// stored row is still CHECKED_IN. Returns rows affected.
	CloseFromCheckedIn(ctx context.Context, rec *models.AttendanceRecord) (int64, error)

	// Finalize persists a manual resolution only if the stored row is still
	// PENDING_APPROVAL or CHECKED_IN, appending the edit entry in the same
	// transaction. Returns rows affected.
	Finalize(ctx context.Context, rec *models.AttendanceRecord, edit *models.AttendanceEdit) (int64, error)

	// LastEdit returns the most recent edit entry for a record, or nil.
	LastEdit(ctx context.Context, recordID uint) (*models.AttendanceEdit, error)

	// Pending lists the exception-queue views: forgotten checkouts when
	// forgotten is true, otherwise overtime approvals.
	Pending(ctx context.Context, companyID uint, forgotten bool) ([]models.AttendanceRecord, error)

	// History lists an employee's records, newest first.
	History(ctx context.Context, employeeID uint, limit int) ([]models.AttendanceRecord, error)
}

// Permissions is the attendance-relevant slice of a user.
type Permissions struct {
	AllowedLocationIDs models.UintSlice
	AllowOutside       bool
}

// UserDirectory resolves a user's attendance permissions. Lookup failures
// fail closed: the engine denies check-in rather than assuming "no
// restriction".
type UserDirectory interface {
	Permissions(ctx context.Context, userID uint) (Permissions, error)
}

// LocationDirectory is the read-only location catalogue, shifts included.
type LocationDirectory interface {
	ActiveLocations(ctx context.Context, companyID uint) ([]models.Location, error)
	LocationByID(ctx context.Context, id uint) (*models.Location, error)
}
