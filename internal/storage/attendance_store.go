// internal/storage/attendance_store.go
package storage

import (
	"context"
	"errors"

	"attendance_backend/internal/attendance"
	"attendance_backend/internal/models"

	"gorm.io/gorm"
)

// AttendanceStore is the gorm implementation of attendance.Store. State
// transitions are conditional updates guarded by the current status, so two
// writers racing on the same record see exactly one winner.
type AttendanceStore struct {
	db *gorm.DB
}

func NewAttendanceStore(db *gorm.DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

func (s *AttendanceStore) Create(ctx context.Context, rec *models.AttendanceRecord) error {
	err := s.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// The (employee, day) unique index fired: a concurrent check-in won.
		return attendance.ErrAlreadyCheckedIn
	}
	return err
}

func (s *AttendanceStore) ByID(ctx context.Context, id uint) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := s.db.WithContext(ctx).First(&rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, attendance.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *AttendanceStore) OpenForDay(ctx context.Context, employeeID uint, day string) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND day = ? AND status = ?", employeeID, day, models.AttendanceCheckedIn).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, attendance.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *AttendanceStore) OpenBefore(ctx context.Context, day string) ([]models.AttendanceRecord, error) {
	var rows []models.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("status = ? AND day < ?", models.AttendanceCheckedIn, day).
		Order("day asc, id asc").
		Find(&rows).Error
	return rows, err
}

func (s *AttendanceStore) CloseFromCheckedIn(ctx context.Context, rec *models.AttendanceRecord) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("id = ? AND status = ?", rec.ID, models.AttendanceCheckedIn).
		Updates(closeColumns(rec))
	return result.RowsAffected, result.Error
}

func (s *AttendanceStore) Finalize(ctx context.Context, rec *models.AttendanceRecord, edit *models.AttendanceEdit) (int64, error) {
	var rows int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Model(&models.AttendanceRecord{}).
			Where("id = ? AND status IN ?", rec.ID,
				[]models.AttendanceStatus{models.AttendancePendingApproval, models.AttendanceCheckedIn}).
			Updates(closeColumns(rec))
		if result.Error != nil {
			return result.Error
		}
		rows = result.RowsAffected
		if rows == 0 {
			return nil
		}
		return tx.Create(edit).Error
	})
	return rows, err
}

func (s *AttendanceStore) LastEdit(ctx context.Context, recordID uint) (*models.AttendanceEdit, error) {
	var edit models.AttendanceEdit
	err := s.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("id desc").
		First(&edit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &edit, nil
}

func (s *AttendanceStore) Pending(ctx context.Context, companyID uint, forgotten bool) ([]models.AttendanceRecord, error) {
	q := s.db.WithContext(ctx).
		Where("company_id = ? AND status = ?", companyID, models.AttendancePendingApproval)
	if forgotten {
		q = q.Where("forgot_checkout = ?", true)
	} else {
		q = q.Where("needs_overtime_approval = ? AND forgot_checkout = ?", true, false)
	}
	var rows []models.AttendanceRecord
	err := q.Order("day asc, id asc").Find(&rows).Error
	return rows, err
}

func (s *AttendanceStore) History(ctx context.Context, employeeID uint, limit int) ([]models.AttendanceRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.AttendanceRecord
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("day desc, id desc").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// closeColumns is the full set of fields a terminal transition writes.
// Hours and status always move together; nothing here is patched alone.
func closeColumns(rec *models.AttendanceRecord) map[string]interface{} {
	return map[string]interface{}{
		"check_out_at":            rec.CheckOutAt,
		"check_out_lat":           rec.CheckOutLat,
		"check_out_lng":           rec.CheckOutLng,
		"total_hours":             rec.TotalHours,
		"overtime_hours":          rec.OvertimeHours,
		"late_minutes":            rec.LateMinutes,
		"is_late":                 rec.IsLate,
		"status":                  rec.Status,
		"forgot_checkout":         rec.ForgotCheckout,
		"needs_overtime_approval": rec.NeedsOvertimeApproval,
		"note":                    rec.Note,
	}
}
