// internal/storage/directory.go
package storage

import (
	"context"

	"attendance_backend/internal/attendance"
	"attendance_backend/internal/models"

	"gorm.io/gorm"
)

// LocationDirectory reads the location catalogue for the engine.
type LocationDirectory struct {
	db *gorm.DB
}

func NewLocationDirectory(db *gorm.DB) *LocationDirectory {
	return &LocationDirectory{db: db}
}

func (d *LocationDirectory) ActiveLocations(ctx context.Context, companyID uint) ([]models.Location, error) {
	var rows []models.Location
	err := d.db.WithContext(ctx).
		Preload("Shifts", func(db *gorm.DB) *gorm.DB { return db.Order("position asc, id asc") }).
		Where("company_id = ? AND active = ?", companyID, true).
		Order("id asc").
		Find(&rows).Error
	return rows, err
}

func (d *LocationDirectory) LocationByID(ctx context.Context, id uint) (*models.Location, error) {
	var loc models.Location
	err := d.db.WithContext(ctx).
		Preload("Shifts", func(db *gorm.DB) *gorm.DB { return db.Order("position asc, id asc") }).
		First(&loc, id).Error
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// UserDirectory reads attendance permissions off the user row.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) Permissions(ctx context.Context, userID uint) (attendance.Permissions, error) {
	var u models.User
	if err := d.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return attendance.Permissions{}, err
	}
	return attendance.Permissions{
		AllowedLocationIDs: u.AllowedLocationIDs,
		AllowOutside:       u.AllowOutside,
	}, nil
}
