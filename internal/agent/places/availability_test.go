package places

import (
	"testing"
	"time"

	"github.com/indigobot/server/internal/agent/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-01 is a Monday.
func monday(hour, minute int) time.Time {
	return time.Date(2024, time.January, 1, hour, minute, 0, 0, time.UTC)
}

func period(openDay int, openTime string, closeDay int, closeTime string) model.Period {
	return model.Period{
		Open:  &model.DayTime{Day: openDay, Time: openTime},
		Close: &model.DayTime{Day: closeDay, Time: closeTime},
	}
}

func boolPtr(b bool) *bool { return &b }

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "0900", want: "09:00"},
		{in: "2359", want: "23:59"},
		{in: "0000", want: "00:00"},
		{in: "900", wantErr: true},
		{in: "09:00", wantErr: true},
		{in: "ab00", wantErr: true},
		{in: "2460", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, 0, Weekday(time.Monday))
	assert.Equal(t, 5, Weekday(time.Saturday))
	assert.Equal(t, 6, Weekday(time.Sunday))
}

func TestCurrentStatus_SameDayWindow(t *testing.T) {
	hours := &model.OpeningHours{Periods: []model.Period{period(0, "0900", 0, "1700")}}

	assert.Equal(t, "Open (Closes at 17:00)", CurrentStatus(hours, monday(10, 30)))
	assert.Equal(t, "Closed (Opens at 09:00)", CurrentStatus(hours, monday(8, 30)))
	assert.Equal(t, "Closed", CurrentStatus(hours, monday(18, 0)))
	assert.Equal(t, "Open (Closes at 17:00)", CurrentStatus(hours, monday(9, 0)), "open time is inclusive")
	assert.Equal(t, "Closed", CurrentStatus(hours, monday(17, 0)), "close time is exclusive")
}

func TestCurrentStatus_OtherDayOnly(t *testing.T) {
	hours := &model.OpeningHours{Periods: []model.Period{period(2, "0900", 2, "1700")}}
	assert.Equal(t, "Closed", CurrentStatus(hours, monday(10, 0)))
}

func TestCurrentStatus_Overnight(t *testing.T) {
	hours := &model.OpeningHours{Periods: []model.Period{period(0, "2000", 1, "0200")}}

	assert.Equal(t, "Open (Closes tomorrow at 02:00)", CurrentStatus(hours, monday(22, 15)))
	assert.Equal(t, "Closed (Opens at 20:00)", CurrentStatus(hours, monday(19, 0)))
}

func TestCurrentStatus_CarryOver(t *testing.T) {
	// Sunday night into Monday morning
	hours := &model.OpeningHours{Periods: []model.Period{period(6, "2200", 0, "0300")}}

	assert.Equal(t, "Open (Closes at 03:00)", CurrentStatus(hours, monday(1, 30)))
	assert.Equal(t, "Closed", CurrentStatus(hours, monday(4, 0)))
}

func TestCurrentStatus_WrapsAroundWeek(t *testing.T) {
	sunday := time.Date(2024, time.January, 7, 23, 0, 0, 0, time.UTC)
	hours := &model.OpeningHours{Periods: []model.Period{period(6, "2100", 0, "0100")}}

	assert.Equal(t, "Open (Closes tomorrow at 01:00)", CurrentStatus(hours, sunday))
}

func TestCurrentStatus_FirstMatchWins(t *testing.T) {
	hours := &model.OpeningHours{Periods: []model.Period{
		period(0, "1300", 0, "1700"),
		period(0, "0800", 0, "1200"),
	}}
	// the later period would report open, but the first one matches rule b
	assert.Equal(t, "Closed (Opens at 13:00)", CurrentStatus(hours, monday(9, 0)))
}

func TestCurrentStatus_OpenNowFallback(t *testing.T) {
	assert.Equal(t, "Open", CurrentStatus(&model.OpeningHours{OpenNow: boolPtr(true)}, monday(3, 0)))
	assert.Equal(t, "Closed", CurrentStatus(&model.OpeningHours{OpenNow: boolPtr(false)}, monday(12, 0)))
	assert.Equal(t, "Hours unknown", CurrentStatus(&model.OpeningHours{}, monday(12, 0)))
	assert.Equal(t, "Hours unknown", CurrentStatus(nil, monday(12, 0)))
}

func TestCurrentStatus_SkipsIncompletePeriods(t *testing.T) {
	hours := &model.OpeningHours{Periods: []model.Period{
		{Open: &model.DayTime{Day: 0, Time: "0000"}},
		period(0, "0900", 0, "1700"),
	}}
	assert.Equal(t, "Open (Closes at 17:00)", CurrentStatus(hours, monday(10, 0)))
}

func TestCurrentStatus_MalformedTime(t *testing.T) {
	hours := &model.OpeningHours{Periods: []model.Period{period(0, "9", 0, "1700")}}

	status := CurrentStatus(hours, monday(10, 0))
	assert.Contains(t, status, "Hours unknown (Error: ")
}

func TestClock_Instant(t *testing.T) {
	at := monday(10, 30)
	assert.True(t, at.Equal(FixedClock(at).Instant()))

	clock, err := NewClock("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, clock.Location.String())

	_, err = NewClock("Not/AZone")
	assert.Error(t, err)
}
