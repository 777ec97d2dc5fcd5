// internal/storage/db.go
package storage

import (
	"fmt"
	"log"
	"os"

	"attendance_backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func OpenDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=Asia/Jakarta",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect database: ", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatal("failed migrate: ", err)
	}

	return db
}

// Migrate runs AutoMigrate for every model. Split out so tests can run it
// against a database they own.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.InviteToken{},
		&models.Location{},
		&models.Shift{},
		&models.AttendanceRecord{},
		&models.AttendanceEdit{},
	)
}
