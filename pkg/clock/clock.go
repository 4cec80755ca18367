package clock

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// MinutesPerDay is the length of a calendar day in minutes
const MinutesPerDay = 24 * 60

var (
	twelveHour = regexp.MustCompile(`^([1-9]|1[012]):([0-5][0-9])([ap])m$`)
	hourMinute = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)
)

// ParseError reports clock text that does not match the expected layout
type ParseError struct {
	Text   string
	Layout string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("clock: cannot parse %q as %s", e.Text, e.Layout)
}

// ParseClockToMinutes converts a 12-hour time such as "2:30pm" into minutes since midnight.
func ParseClockToMinutes(text string) (int, error) {
	groups := twelveHour.FindStringSubmatch(cases.Fold().String(strings.TrimSpace(text)))
	if groups == nil {
		return 0, &ParseError{Text: text, Layout: "H:MM[ap]m"}
	}

	hour, _ := strconv.Atoi(groups[1])
	minute, _ := strconv.Atoi(groups[2])
	if hour == 12 {
		hour = 0
	}
	if groups[3] == "p" {
		hour += 12
	}

	return hour*60 + minute, nil
}

// ParseHourMinute converts a 24-hour "HH:MM" time into minutes since midnight.
// "24:00" is accepted as the end of the day.
func ParseHourMinute(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "24:00" {
		return MinutesPerDay, nil
	}

	groups := hourMinute.FindStringSubmatch(text)
	if groups == nil {
		return 0, &ParseError{Text: text, Layout: "HH:MM"}
	}

	hour, _ := strconv.Atoi(groups[1])
	minute, _ := strconv.Atoi(groups[2])
	return hour*60 + minute, nil
}

// MinutesToClock formats minutes since midnight as a zero-padded 24-hour "HH:MM".
// The end of the day (1440) formats as "24:00".
func MinutesToClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
