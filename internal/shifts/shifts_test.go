package shifts_test

import (
	"testing"
	"time"

	"attendance_backend/internal/models"
	"attendance_backend/internal/shifts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday 2025-06-02 is the anchor day for most cases.
func at(day, clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", day+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func allWeek(open, close string) models.WeeklyHours {
	var w models.WeeklyHours
	for i := range w {
		w[i] = models.DayHours{Open: open, Close: close}
	}
	return w
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"09:00", 540, true},
		{"00:00", 0, true},
		{"23:59", 1439, true},
		{" 08:30 ", 510, true},
		{"24:00", 0, false},
		{"09:60", 0, false},
		{"0900", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := shifts.ParseClock(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			assert.Equal(t, tc.want, got, tc.in)
		} else {
			assert.Error(t, err, tc.in)
		}
	}
}

func TestIsOpenSameDayWindow(t *testing.T) {
	loc := models.Location{Hours: allWeek("09:00", "18:00")}

	assert.False(t, shifts.IsOpen(loc, at("2025-06-02", "08:59")))
	assert.True(t, shifts.IsOpen(loc, at("2025-06-02", "09:00")))
	assert.True(t, shifts.IsOpen(loc, at("2025-06-02", "17:59")))
	assert.False(t, shifts.IsOpen(loc, at("2025-06-02", "18:00")))
}

func TestIsOpenOvernightWindow(t *testing.T) {
	loc := models.Location{Hours: allWeek("22:00", "06:00")}

	assert.True(t, shifts.IsOpen(loc, at("2025-06-02", "22:00")))
	assert.True(t, shifts.IsOpen(loc, at("2025-06-03", "05:59")))
	assert.False(t, shifts.IsOpen(loc, at("2025-06-03", "06:00")))
	assert.False(t, shifts.IsOpen(loc, at("2025-06-02", "12:00")))
}

func TestIsOpenClosedDay(t *testing.T) {
	hours := allWeek("09:00", "18:00")
	hours[time.Sunday] = models.DayHours{Closed: true}
	loc := models.Location{Hours: hours}

	// 2025-06-01 is a Sunday.
	assert.False(t, shifts.IsOpen(loc, at("2025-06-01", "12:00")))
	assert.True(t, shifts.IsOpen(loc, at("2025-06-02", "12:00")))
}

func TestAvailableGraceWindow(t *testing.T) {
	loc := models.Location{
		Hours: allWeek("08:00", "19:00"),
		Shifts: []models.Shift{
			{ID: 1, Name: "day", StartTime: "09:00", EndTime: "18:00", GraceMinutes: 10},
		},
	}

	assert.Empty(t, shifts.Available(loc, at("2025-06-02", "08:49")))
	assert.Len(t, shifts.Available(loc, at("2025-06-02", "08:50")), 1)
	assert.Len(t, shifts.Available(loc, at("2025-06-02", "17:59")), 1)
	assert.Empty(t, shifts.Available(loc, at("2025-06-02", "18:00")))
}

func TestAvailableOutsideLocationHours(t *testing.T) {
	// The shift's grace window starts before the location opens; the
	// location hours still gate.
	loc := models.Location{
		Hours: allWeek("09:00", "18:00"),
		Shifts: []models.Shift{
			{ID: 1, Name: "day", StartTime: "09:00", EndTime: "18:00", GraceMinutes: 30},
		},
	}

	assert.Empty(t, shifts.Available(loc, at("2025-06-02", "08:45")))
}

func TestAvailableWrappingShift(t *testing.T) {
	loc := models.Location{
		Hours: allWeek("21:00", "07:00"),
		Shifts: []models.Shift{
			{ID: 7, Name: "night", StartTime: "22:00", EndTime: "06:00", GraceMinutes: 15},
		},
	}

	assert.Len(t, shifts.Available(loc, at("2025-06-02", "21:45")), 1)
	assert.Empty(t, shifts.Available(loc, at("2025-06-02", "21:44")))
	assert.Len(t, shifts.Available(loc, at("2025-06-03", "05:00")), 1)
	assert.Empty(t, shifts.Available(loc, at("2025-06-03", "06:30")))
}

func TestAvailableMultipleShifts(t *testing.T) {
	loc := models.Location{
		Hours: allWeek("06:00", "23:00"),
		Shifts: []models.Shift{
			{ID: 1, Name: "morning", StartTime: "07:00", EndTime: "15:00", GraceMinutes: 10},
			{ID: 2, Name: "evening", StartTime: "14:00", EndTime: "22:00", GraceMinutes: 10},
		},
	}

	got := shifts.Available(loc, at("2025-06-02", "14:30"))
	require.Len(t, got, 2)
	assert.Equal(t, "morning", got[0].Name)
	assert.Equal(t, "evening", got[1].Name)

	got = shifts.Available(loc, at("2025-06-02", "08:00"))
	require.Len(t, got, 1)
	assert.Equal(t, "morning", got[0].Name)
}

func TestCloseAt(t *testing.T) {
	sameDay := models.Location{Hours: allWeek("09:00", "18:00")}
	closeAt, ok := shifts.CloseAt(sameDay, at("2025-06-02", "08:52"))
	require.True(t, ok)
	assert.Equal(t, at("2025-06-02", "18:00"), closeAt)

	overnight := models.Location{Hours: allWeek("22:00", "06:00")}
	closeAt, ok = shifts.CloseAt(overnight, at("2025-06-02", "22:30"))
	require.True(t, ok)
	assert.Equal(t, at("2025-06-03", "06:00"), closeAt)

	closed := models.Location{Hours: models.WeeklyHours{}}
	_, ok = shifts.CloseAt(closed, at("2025-06-02", "10:00"))
	assert.False(t, ok)
}

func TestShiftEndAt(t *testing.T) {
	day := models.Shift{StartTime: "09:00", EndTime: "18:00"}
	endAt, ok := shifts.ShiftEndAt(day, at("2025-06-02", "08:52"))
	require.True(t, ok)
	assert.Equal(t, at("2025-06-02", "18:00"), endAt)

	night := models.Shift{StartTime: "22:00", EndTime: "06:00"}
	endAt, ok = shifts.ShiftEndAt(night, at("2025-06-02", "22:30"))
	require.True(t, ok)
	assert.Equal(t, at("2025-06-03", "06:00"), endAt)
}

func TestShiftStartAt(t *testing.T) {
	day := models.Shift{StartTime: "09:00", EndTime: "18:00", GraceMinutes: 10}

	startAt, ok := shifts.ShiftStartAt(day, at("2025-06-02", "08:52"))
	require.True(t, ok)
	assert.Equal(t, at("2025-06-02", "09:00"), startAt)

	startAt, ok = shifts.ShiftStartAt(day, at("2025-06-02", "09:06"))
	require.True(t, ok)
	assert.Equal(t, at("2025-06-02", "09:00"), startAt)

	// A check-in after midnight for a wrapping shift keeps the previous
	// day's start.
	night := models.Shift{StartTime: "22:00", EndTime: "06:00", GraceMinutes: 15}
	startAt, ok = shifts.ShiftStartAt(night, at("2025-06-03", "00:30"))
	require.True(t, ok)
	assert.Equal(t, at("2025-06-02", "22:00"), startAt)
}
