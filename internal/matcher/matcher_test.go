package matcher_test

import (
	"testing"
	"time"

	"attendance_backend/internal/geo"
	"attendance_backend/internal/matcher"
	"attendance_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allWeek(open, close string) models.WeeklyHours {
	var w models.WeeklyHours
	for i := range w {
		w[i] = models.DayHours{Open: open, Close: close}
	}
	return w
}

// Monday morning, well inside the day shift window.
var monday10 = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func hq() models.Location {
	return models.Location{
		ID: 1, Name: "HQ",
		Latitude: 0, Longitude: 0, RadiusMeters: 100, Active: true,
		Hours: allWeek("08:00", "19:00"),
		Shifts: []models.Shift{
			{ID: 10, LocationID: 1, Name: "day", StartTime: "09:00", EndTime: "18:00", GraceMinutes: 10},
		},
	}
}

func warehouse() models.Location {
	return models.Location{
		ID: 2, Name: "Warehouse",
		Latitude: 0.01, Longitude: 0, RadiusMeters: 100, Active: true,
		Hours: allWeek("08:00", "19:00"),
		Shifts: []models.Shift{
			{ID: 20, LocationID: 2, Name: "day", StartTime: "09:00", EndTime: "18:00", GraceMinutes: 10},
		},
	}
}

func TestAuthorizeOnsite(t *testing.T) {
	res, err := matcher.Authorize(geo.Point{}, monday10, []models.Location{hq(), warehouse()}, models.UintSlice{1}, false)
	require.NoError(t, err)

	assert.True(t, res.Allowed)
	assert.Equal(t, models.ModeOnsite, res.Mode)
	require.NotNil(t, res.Primary)
	assert.Equal(t, uint(1), res.Primary.ID)
	assert.Equal(t, "inside HQ", res.Reason)
	assert.Equal(t, models.UintSlice{1}, res.WithinIDs)
	require.NotNil(t, res.Selected)
	assert.Equal(t, uint(10), res.Selected.ID)
}

func TestAuthorizeNearestPermittedWins(t *testing.T) {
	// Standing inside both geofences: the closer one is primary.
	near := hq()
	far := warehouse()
	far.Latitude = 0.0005
	far.RadiusMeters = 200

	res, err := matcher.Authorize(geo.Point{}, monday10, []models.Location{far, near}, models.UintSlice{1, 2}, false)
	require.NoError(t, err)

	require.True(t, res.Allowed)
	assert.Equal(t, uint(1), res.Primary.ID)
	assert.ElementsMatch(t, models.UintSlice{1, 2}, res.WithinIDs)
}

func TestAuthorizeMultipleOpenShifts(t *testing.T) {
	loc := hq()
	loc.Shifts = []models.Shift{
		{ID: 10, Name: "morning", StartTime: "07:00", EndTime: "15:00", GraceMinutes: 10},
		{ID: 11, Name: "mid", StartTime: "09:30", EndTime: "17:30", GraceMinutes: 60},
	}

	res, err := matcher.Authorize(geo.Point{}, monday10, []models.Location{loc}, models.UintSlice{1}, false)
	require.NoError(t, err)

	assert.True(t, res.Allowed)
	assert.Len(t, res.Shifts, 2)
	assert.Nil(t, res.Selected)
}

func TestAuthorizeNoOpenShift(t *testing.T) {
	midnight := time.Date(2025, 6, 2, 23, 30, 0, 0, time.UTC)
	loc := hq()
	loc.Hours = allWeek("00:00", "23:59")

	res, err := matcher.Authorize(geo.Point{}, midnight, []models.Location{loc}, models.UintSlice{1}, false)
	require.NoError(t, err)

	assert.False(t, res.Allowed)
	assert.Equal(t, "HQ has no open shift right now", res.Reason)
	assert.Equal(t, models.UintSlice{1}, res.WithinIDs)
}

func TestAuthorizeOffsite(t *testing.T) {
	away := geo.Point{Latitude: 1, Longitude: 1}

	res, err := matcher.Authorize(away, monday10, []models.Location{hq()}, models.UintSlice{1}, true)
	require.NoError(t, err)

	assert.True(t, res.Allowed)
	assert.Equal(t, models.ModeOffsite, res.Mode)
	assert.Nil(t, res.Primary)
	assert.Equal(t, "offsite check-in", res.Reason)
	assert.Empty(t, res.WithinIDs)
}

func TestAuthorizeOffsiteNearUnassignedLocation(t *testing.T) {
	// Inside the warehouse geofence but not assigned to it, with outside
	// check-ins allowed: offsite, naming the nearby location.
	p := geo.Point{Latitude: 0.01, Longitude: 0}

	res, err := matcher.Authorize(p, monday10, []models.Location{hq(), warehouse()}, models.UintSlice{1}, true)
	require.NoError(t, err)

	assert.True(t, res.Allowed)
	assert.Equal(t, models.ModeOffsite, res.Mode)
	assert.Equal(t, "offsite check-in near Warehouse", res.Reason)
	assert.Equal(t, models.UintSlice{2}, res.WithinIDs)
}

func TestAuthorizeDeniedAtUnassignedLocation(t *testing.T) {
	p := geo.Point{Latitude: 0.01, Longitude: 0}

	res, err := matcher.Authorize(p, monday10, []models.Location{hq(), warehouse()}, models.UintSlice{1}, false)
	require.NoError(t, err)

	assert.False(t, res.Allowed)
	assert.Equal(t, "you are at Warehouse but not assigned to it", res.Reason)
	assert.Equal(t, models.UintSlice{2}, res.WithinIDs)
}

func TestAuthorizeDeniedNowhereNear(t *testing.T) {
	away := geo.Point{Latitude: 1, Longitude: 1}

	res, err := matcher.Authorize(away, monday10, []models.Location{hq()}, models.UintSlice{1}, false)
	require.NoError(t, err)

	assert.False(t, res.Allowed)
	assert.Equal(t, "not within any permitted area", res.Reason)
}

func TestAuthorizeIgnoresInactiveLocations(t *testing.T) {
	loc := hq()
	loc.Active = false

	res, err := matcher.Authorize(geo.Point{}, monday10, []models.Location{loc}, models.UintSlice{1}, false)
	require.NoError(t, err)

	assert.False(t, res.Allowed)
	assert.Equal(t, "not within any permitted area", res.Reason)
}

func TestAuthorizeInvalidPoint(t *testing.T) {
	_, err := matcher.Authorize(geo.Point{Latitude: 99, Longitude: 999}, monday10, []models.Location{hq()}, models.UintSlice{1}, false)
	assert.Error(t, err)
}
