// internal/models/attendance.go
package models

import "time"

type AttendanceStatus string

const (
	AttendanceCheckedIn       AttendanceStatus = "CHECKED_IN"
	AttendanceCompleted       AttendanceStatus = "COMPLETED"
	AttendancePendingApproval AttendanceStatus = "PENDING_APPROVAL"
)

type CheckinMode string

const (
	ModeOnsite  CheckinMode = "ONSITE"
	ModeOffsite CheckinMode = "OFFSITE"
)

// AttendanceRecord is the single attendance row for one employee on one
// working day. Day is "2006-01-02"; the unique index on (employee_id, day)
// is what makes concurrent check-ins for the same day yield one winner.
type AttendanceRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CompanyID  uint      `gorm:"index;not null" json:"company_id"`
	EmployeeID uint      `gorm:"not null;uniqueIndex:idx_employee_day" json:"employee_id"`
	Day        string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_employee_day" json:"day"`
	CheckInAt  time.Time `gorm:"not null" json:"check_in_at"`
	CheckInLat float64   `json:"check_in_lat"`
	CheckInLng float64   `json:"check_in_lng"`

	WithinLocationIDs UintSlice   `gorm:"type:jsonb" json:"within_location_ids"`
	LocationID        *uint       `gorm:"index" json:"location_id,omitempty"`
	ShiftID           *uint       `json:"shift_id,omitempty"`
	Mode              CheckinMode `gorm:"type:varchar(10);not null" json:"mode"`
	AuthReason        string      `json:"auth_reason"`

	CheckOutAt  *time.Time `json:"check_out_at,omitempty"`
	CheckOutLat *float64   `json:"check_out_lat,omitempty"`
	CheckOutLng *float64   `json:"check_out_lng,omitempty"`

	TotalHours    float64 `gorm:"not null;default:0" json:"total_hours"`
	OvertimeHours float64 `gorm:"not null;default:0" json:"overtime_hours"`
	LateMinutes   int     `gorm:"not null;default:0" json:"late_minutes"`
	IsLate        bool    `gorm:"not null;default:false" json:"is_late"`

	Status                AttendanceStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ForgotCheckout        bool             `gorm:"not null;default:false" json:"forgot_checkout"`
	NeedsOvertimeApproval bool             `gorm:"not null;default:false" json:"needs_overtime_approval"`
	Note                  string           `json:"note"`

	Edits []AttendanceEdit `gorm:"foreignKey:RecordID" json:"edits,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AttendanceEdit is one append-only audit entry recording a manual change of
// a record's checkout time. Rows are never updated or deleted.
type AttendanceEdit struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	RecordID         uint       `gorm:"index;not null" json:"record_id"`
	EditorID         uint       `gorm:"not null" json:"editor_id"`
	OldCheckOutAt    *time.Time `json:"old_check_out_at,omitempty"`
	NewCheckOutAt    time.Time  `gorm:"not null" json:"new_check_out_at"`
	Reason           string     `json:"reason"`
	OvertimeApproved bool       `gorm:"not null;default:false" json:"overtime_approved"`
	CreatedAt        time.Time  `json:"created_at"`
}
