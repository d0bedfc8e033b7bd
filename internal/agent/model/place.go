package model

// PlaceRecord is a structured result of a place lookup. Name and
// FormattedAddress are required for a valid record; the rest are optional.
type PlaceRecord struct {
	Name                 string        `json:"name"`
	FormattedAddress     string        `json:"formatted_address"`
	FormattedPhoneNumber string        `json:"formatted_phone_number,omitempty"`
	Website              string        `json:"website,omitempty"`
	OpeningHours         *OpeningHours `json:"opening_hours,omitempty"`
}

type OpeningHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	Periods     []Period `json:"periods,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

// Period is one open/close window. Either side may be missing in source data
// (24h places report no close); such periods are skipped by the availability engine.
type Period struct {
	Open  *DayTime `json:"open,omitempty"`
	Close *DayTime `json:"close,omitempty"`
}

// DayTime is a weekday (0=Monday..6=Sunday) and a local "HHMM" time.
type DayTime struct {
	Day  int    `json:"day"`
	Time string `json:"time"`
}

// Valid reports whether the record carries the required fields.
func (p PlaceRecord) Valid() bool {
	return p.Name != "" && p.FormattedAddress != ""
}
