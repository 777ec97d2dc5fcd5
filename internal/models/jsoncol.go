package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// UintSlice is a set of IDs stored as a JSON array column.
type UintSlice []uint

// Scan implements sql.Scanner for reading JSON arrays from the database.
func (s *UintSlice) Scan(value interface{}) error {
	if value == nil {
		*s = UintSlice{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("UintSlice.Scan: expected []byte, got %T", value)
	}
	return json.Unmarshal(raw, s)
}

// Value implements driver.Valuer for writing JSON arrays to the database.
func (s UintSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Contains reports whether id is present in the slice.
func (s UintSlice) Contains(id uint) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}
