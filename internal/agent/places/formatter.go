package places

import (
	"strings"

	"github.com/indigobot/server/internal/agent/model"
)

// Formatter renders place records into the block appended to the bot context.
type Formatter struct {
	Clock Clock
}

func NewFormatter(clock Clock) *Formatter {
	return &Formatter{Clock: clock}
}

// Format never fails: Name and Address fall back to "N/A", phone and website
// are omitted when absent.
func (f *Formatter) Format(rec model.PlaceRecord) string {
	lines := []string{
		"Name: " + orNA(rec.Name),
		"Address: " + orNA(rec.FormattedAddress),
	}
	if rec.FormattedPhoneNumber != "" {
		lines = append(lines, "Phone Number: "+rec.FormattedPhoneNumber)
	}
	if rec.Website != "" {
		lines = append(lines, "Website: "+rec.Website)
	}

	lines = append(lines, "Current Status: "+CurrentStatus(rec.OpeningHours, f.Clock.Instant()))
	lines = append(lines, HoursSection(rec.OpeningHours))

	return strings.Join(lines, "\n")
}

// HoursSection renders weekday_text in source order, or "Hours: Not available".
func HoursSection(hours *model.OpeningHours) string {
	if hours == nil || len(hours.WeekdayText) == 0 {
		return "Hours: Not available"
	}
	var b strings.Builder
	b.WriteString("Opening Hours:")
	for _, line := range hours.WeekdayText {
		b.WriteString("\n  ")
		b.WriteString(line)
	}
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
