package lunch

import (
	"errors"
	"strings"
	"time"
)

// DailyLunch is the single record tracked per weekday. Date is the key:
// "YYYY-MM-DD" in the service-local timezone.
type DailyLunch struct {
	Date               string    `json:"date"`
	Available          bool      `json:"available"`
	UnavailableReason  *string   `json:"unavailableReason,omitempty"`
	CutoffTime         string    `json:"cutoffTime"` // "HH:MM", local
	AllowLateResponses bool      `json:"allowLateResponses"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

var (
	ErrNotFound     = errors.New("daily lunch not found")
	ErrNoLunchToday = errors.New("no lunch today")
	ErrWeekend      = errors.New("weekend - no lunch tracking")
	ErrCutoffPassed = errors.New("cutoff time has passed")
	ErrForbidden    = errors.New("admin action requires admin actor")
)

const (
	DateLayout = "2006-01-02"

	// DefaultCutoff is used when configuration supplies no valid cutoff.
	DefaultCutoff = "12:30"
)

// FormatDate renders t as the store key for its calendar day.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// CarriesHoliday reports whether yesterday's closed record should roll into
// today. This is a literal substring rule, not a holiday calendar: the admin
// typed something like "Diwali holiday" and the next day inherits it.
func CarriesHoliday(prev *DailyLunch) bool {
	if prev == nil || prev.Available || prev.UnavailableReason == nil {
		return false
	}

	return strings.Contains(strings.ToLower(*prev.UnavailableReason), "holiday")
}

// ParseCutoff converts the stored "HH:MM" cutoff into the wall-clock instant
// on day's date in day's location.
func ParseCutoff(cutoff string, day time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", cutoff)

	if err != nil {
		return time.Time{}, err
	}

	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// PastCutoff compares now's local time-of-day against the record's cutoff.
// All users are assumed colocated in one timezone; no normalization happens.
func (d *DailyLunch) PastCutoff(now time.Time) bool {
	cutoff, err := ParseCutoff(d.CutoffTime, now)

	if err != nil {
		// unparseable cutoff never blocks a submit
		return false
	}

	return now.After(cutoff)
}

type SetAvailabilityRequest struct {
	Available bool `json:"available"`
	// nil means "not provided": the stored reason is left untouched.
	// An explicitly provided empty reason is normalized to "no reason".
	Reason *string `json:"reason" binding:"omitempty,max=300"`
}

type SetLateResponsesRequest struct {
	Allow *bool `json:"allow" binding:"required"`
}
