package places

import (
	"strings"
	"testing"

	"github.com/indigobot/server/internal/agent/model"
	"github.com/stretchr/testify/assert"
)

func TestFormatter_Format(t *testing.T) {
	f := NewFormatter(FixedClock(monday(10, 30)))

	rec := model.PlaceRecord{
		Name:                 "Multnomah County Central Library",
		FormattedAddress:     "801 SW 10th Ave, Portland, OR 97205, USA",
		FormattedPhoneNumber: "(503) 988-5123",
		Website:              "https://multcolib.org/",
		OpeningHours: &model.OpeningHours{
			Periods:     []model.Period{period(0, "1000", 0, "2000")},
			WeekdayText: []string{"Monday: 10:00 AM – 8:00 PM", "Tuesday: 10:00 AM – 8:00 PM"},
		},
	}

	want := strings.Join([]string{
		"Name: Multnomah County Central Library",
		"Address: 801 SW 10th Ave, Portland, OR 97205, USA",
		"Phone Number: (503) 988-5123",
		"Website: https://multcolib.org/",
		"Current Status: Open (Closes at 20:00)",
		"Opening Hours:",
		"  Monday: 10:00 AM – 8:00 PM",
		"  Tuesday: 10:00 AM – 8:00 PM",
	}, "\n")
	assert.Equal(t, want, f.Format(rec))
}

func TestFormatter_OmitsMissingOptionalFields(t *testing.T) {
	f := NewFormatter(FixedClock(monday(10, 30)))

	out := f.Format(model.PlaceRecord{Name: "Blanchet House", FormattedAddress: "340 NW Glisan St"})

	assert.Contains(t, out, "Name:")
	assert.Contains(t, out, "Address:")
	assert.NotContains(t, out, "Phone Number:")
	assert.NotContains(t, out, "Website:")
	assert.Contains(t, out, "Current Status: Hours unknown")
	assert.True(t, strings.HasSuffix(out, "Hours: Not available"))
}

func TestFormatter_NameAndAddressFallback(t *testing.T) {
	f := NewFormatter(FixedClock(monday(10, 30)))

	out := f.Format(model.PlaceRecord{})

	lines := strings.Split(out, "\n")
	assert.Equal(t, "Name: N/A", lines[0])
	assert.Equal(t, "Address: N/A", lines[1])
}

func TestHoursSection(t *testing.T) {
	assert.Equal(t, "Hours: Not available", HoursSection(nil))
	assert.Equal(t, "Hours: Not available", HoursSection(&model.OpeningHours{OpenNow: boolPtr(true)}))
	assert.Equal(t, "Opening Hours:\n  Sunday: Closed", HoursSection(&model.OpeningHours{WeekdayText: []string{"Sunday: Closed"}}))
}
