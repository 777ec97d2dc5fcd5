// internal/models/location.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DayHours is one weekday's working-hours entry. Open and Close are "15:04"
// clock times; Close numerically before Open means the window runs past
// midnight into the next day.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// WeeklyHours is indexed by time.Weekday (Sunday = 0). Stored as a JSON column.
type WeeklyHours [7]DayHours

func (w *WeeklyHours) Scan(value interface{}) error {
	if value == nil {
		*w = WeeklyHours{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("WeeklyHours.Scan: expected []byte, got %T", value)
	}
	return json.Unmarshal(raw, w)
}

func (w WeeklyHours) Value() (driver.Value, error) {
	raw, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

type Location struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	CompanyID    uint        `gorm:"index;not null" json:"company_id"`
	Name         string      `gorm:"not null" json:"name"`
	Latitude     float64     `gorm:"not null" json:"latitude"`
	Longitude    float64     `gorm:"not null" json:"longitude"`
	RadiusMeters float64     `gorm:"not null" json:"radius_meters"`
	Active       bool        `gorm:"not null;default:true" json:"active"`
	Hours        WeeklyHours `gorm:"type:jsonb" json:"hours"`
	Shifts       []Shift     `gorm:"foreignKey:LocationID" json:"shifts,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Shift is one named working window at a location. StartTime and EndTime are
// "15:04" clock times; EndTime before StartTime wraps past midnight.
// GraceMinutes is how early before start a check-in still matches the shift.
// LateToleranceMinutes is how long after start a check-in is not yet late.
// StandardHours overrides the engine's standard day length when > 0.
type Shift struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	LocationID           uint      `gorm:"index;not null" json:"location_id"`
	Position             int       `gorm:"not null;default:0" json:"position"`
	Name                 string    `gorm:"not null" json:"name"`
	StartTime            string    `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime              string    `gorm:"type:varchar(5);not null" json:"end_time"`
	GraceMinutes         int       `gorm:"not null;default:0" json:"grace_minutes"`
	LateToleranceMinutes int       `gorm:"not null;default:0" json:"late_tolerance_minutes"`
	StandardHours        float64   `gorm:"not null;default:0" json:"standard_hours"`
	CreatedAt            time.Time `json:"created_at"`
}
