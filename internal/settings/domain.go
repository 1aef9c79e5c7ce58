package settings

import "time"

// Settings is the studio configuration record. It is loaded per request and
// passed as an explicit read-only value into any check that needs it; nothing
// in the application treats it as ambient global state.
type Settings struct {
	StudioName         string
	OpeningHour        int
	ClosingHour        int
	CheckInWindowHours int
	MonthlyDueDay      int
	UpdatedAt          time.Time
}

// DefaultSettings returns the configuration used before an administrator has
// saved one.
func DefaultSettings() Settings {
	return Settings{
		StudioName:         "FitDesk Studio",
		OpeningHour:        6,
		ClosingHour:        23,
		CheckInWindowHours: 2,
		MonthlyDueDay:      5,
	}
}

// OpenAt reports whether the studio accepts check-ins at the given time.
func (s Settings) OpenAt(t time.Time) bool {
	hour := t.Hour()
	return hour >= s.OpeningHour && hour < s.ClosingHour
}
