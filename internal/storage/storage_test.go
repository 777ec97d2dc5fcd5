package storage_test

import (
	"context"
	"testing"
	"time"

	"attendance_backend/internal/attendance"
	"attendance_backend/internal/models"
	"attendance_backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("attendance_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormPg.Open(connStr), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))

	return db
}

func at(day, clock string) time.Time {
	ti, err := time.Parse("2006-01-02 15:04", day+" "+clock)
	if err != nil {
		panic(err)
	}
	return ti
}

func openRecord(employeeID uint, day string) *models.AttendanceRecord {
	return &models.AttendanceRecord{
		CompanyID:  1,
		EmployeeID: employeeID,
		Day:        day,
		CheckInAt:  at(day, "08:52"),
		Mode:       models.ModeOnsite,
		Status:     models.AttendanceCheckedIn,
	}
}

func TestAttendanceStore(t *testing.T) {
	db := setupDB(t)
	store := storage.NewAttendanceStore(db)
	ctx := context.Background()

	t.Run("create enforces one record per employee and day", func(t *testing.T) {
		rec := openRecord(1, "2025-06-02")
		require.NoError(t, store.Create(ctx, rec))
		require.NotZero(t, rec.ID)

		dup := openRecord(1, "2025-06-02")
		err := store.Create(ctx, dup)
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

		require.NoError(t, store.Create(ctx, openRecord(1, "2025-06-03")))
		require.NoError(t, store.Create(ctx, openRecord(2, "2025-06-02")))
	})

	t.Run("open lookups", func(t *testing.T) {
		rec, err := store.OpenForDay(ctx, 1, "2025-06-02")
		require.NoError(t, err)
		assert.Equal(t, uint(1), rec.EmployeeID)

		_, err = store.OpenForDay(ctx, 1, "2025-06-04")
		assert.ErrorIs(t, err, attendance.ErrNotFound)

		stale, err := store.OpenBefore(ctx, "2025-06-03")
		require.NoError(t, err)
		assert.Len(t, stale, 2)
	})

	t.Run("close applies only from checked in", func(t *testing.T) {
		rec, err := store.OpenForDay(ctx, 2, "2025-06-02")
		require.NoError(t, err)

		out := at("2025-06-02", "18:00")
		rec.CheckOutAt = &out
		rec.TotalHours = 9.1
		rec.OvertimeHours = 1.1
		rec.Status = models.AttendanceCompleted

		rows, err := store.CloseFromCheckedIn(ctx, rec)
		require.NoError(t, err)
		assert.EqualValues(t, 1, rows)

		// The row has left CHECKED_IN; a second closer loses.
		rows, err = store.CloseFromCheckedIn(ctx, rec)
		require.NoError(t, err)
		assert.Zero(t, rows)

		got, err := store.ByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, models.AttendanceCompleted, got.Status)
		assert.Equal(t, 9.1, got.TotalHours)
		require.NotNil(t, got.CheckOutAt)
	})

	t.Run("finalize records the edit with the transition", func(t *testing.T) {
		rec, err := store.OpenForDay(ctx, 1, "2025-06-03")
		require.NoError(t, err)

		out := at("2025-06-03", "18:00")
		rec.CheckOutAt = &out
		rec.TotalHours = 9.1
		rec.Status = models.AttendancePendingApproval
		rec.ForgotCheckout = true
		rows, err := store.CloseFromCheckedIn(ctx, rec)
		require.NoError(t, err)
		require.EqualValues(t, 1, rows)

		last, err := store.LastEdit(ctx, rec.ID)
		require.NoError(t, err)
		assert.Nil(t, last)

		approved := at("2025-06-03", "18:30")
		rec.CheckOutAt = &approved
		rec.Status = models.AttendanceCompleted
		rows, err = store.Finalize(ctx, rec, &models.AttendanceEdit{
			RecordID:         rec.ID,
			EditorID:         99,
			OldCheckOutAt:    &out,
			NewCheckOutAt:    approved,
			Reason:           "left on time",
			OvertimeApproved: false,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 1, rows)

		last, err = store.LastEdit(ctx, rec.ID)
		require.NoError(t, err)
		require.NotNil(t, last)
		assert.Equal(t, uint(99), last.EditorID)
		assert.True(t, last.NewCheckOutAt.Equal(approved))

		// Already COMPLETED: finalize neither updates nor appends an edit.
		rows, err = store.Finalize(ctx, rec, &models.AttendanceEdit{
			RecordID: rec.ID, EditorID: 99, NewCheckOutAt: approved,
		})
		require.NoError(t, err)
		assert.Zero(t, rows)

		var count int64
		require.NoError(t, db.Model(&models.AttendanceEdit{}).
			Where("record_id = ?", rec.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("pending views split forgotten and overtime", func(t *testing.T) {
		forgot := openRecord(3, "2025-06-02")
		require.NoError(t, store.Create(ctx, forgot))
		out := at("2025-06-02", "17:00")
		forgot.CheckOutAt = &out
		forgot.Status = models.AttendancePendingApproval
		forgot.ForgotCheckout = true
		rows, err := store.CloseFromCheckedIn(ctx, forgot)
		require.NoError(t, err)
		require.EqualValues(t, 1, rows)

		overtime := openRecord(4, "2025-06-02")
		require.NoError(t, store.Create(ctx, overtime))
		late := at("2025-06-02", "20:30")
		overtime.CheckOutAt = &late
		overtime.Status = models.AttendancePendingApproval
		overtime.NeedsOvertimeApproval = true
		rows, err = store.CloseFromCheckedIn(ctx, overtime)
		require.NoError(t, err)
		require.EqualValues(t, 1, rows)

		forgotten, err := store.Pending(ctx, 1, true)
		require.NoError(t, err)
		require.Len(t, forgotten, 1)
		assert.Equal(t, forgot.ID, forgotten[0].ID)

		approvals, err := store.Pending(ctx, 1, false)
		require.NoError(t, err)
		require.Len(t, approvals, 1)
		assert.Equal(t, overtime.ID, approvals[0].ID)
	})

	t.Run("history is newest first", func(t *testing.T) {
		rows, err := store.History(ctx, 1, 10)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2025-06-03", rows[0].Day)
		assert.Equal(t, "2025-06-02", rows[1].Day)
	})
}

func TestDirectories(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	var hours models.WeeklyHours
	for i := range hours {
		hours[i] = models.DayHours{Open: "09:00", Close: "18:00"}
	}
	loc := models.Location{
		CompanyID: 1, Name: "HQ",
		Latitude: -6.2, Longitude: 106.8, RadiusMeters: 100, Active: true,
		Hours: hours,
		Shifts: []models.Shift{
			{Position: 1, Name: "evening", StartTime: "14:00", EndTime: "22:00"},
			{Position: 0, Name: "morning", StartTime: "06:00", EndTime: "14:00"},
		},
	}
	require.NoError(t, db.Create(&loc).Error)
	require.NoError(t, db.Create(&models.Location{
		CompanyID: 1, Name: "Old office", RadiusMeters: 50, Active: false,
	}).Error)

	locations := storage.NewLocationDirectory(db)

	active, err := locations.ActiveLocations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "HQ", active[0].Name)
	require.Len(t, active[0].Shifts, 2)
	// Shifts come back in configured order, not insertion order.
	assert.Equal(t, "morning", active[0].Shifts[0].Name)
	assert.Equal(t, "evening", active[0].Shifts[1].Name)

	got, err := locations.LocationByID(ctx, loc.ID)
	require.NoError(t, err)
	assert.Equal(t, hours, got.Hours)

	user := models.User{
		CompanyID: 1, FullName: "Budi", Email: "budi@example.com",
		PasswordHash: "x", Role: models.RoleEmployee, Status: models.StatusActive,
		AllowedLocationIDs: models.UintSlice{loc.ID},
		AllowOutside:       false,
	}
	require.NoError(t, db.Create(&user).Error)

	users := storage.NewUserDirectory(db)
	perms, err := users.Permissions(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UintSlice{loc.ID}, perms.AllowedLocationIDs)
	assert.False(t, perms.AllowOutside)
	assert.True(t, perms.AllowedLocationIDs.Contains(loc.ID))
}
