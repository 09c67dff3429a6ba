package leave

import (
	"fmt"
	"regexp"
	"time"
)

var periodDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{2}\.\d{2}\.\d{4}`)

// ParsePeriod extracts one or two dates from a free-form leave period such as
// "2024-05-01..2024-05-03" or "01.05.2024 - 03.05.2024". The returned end is
// midnight after the last day, so a single date spans one full day.
func ParsePeriod(period string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	tokens := periodDatePattern.FindAllString(period, -1)
	if len(tokens) == 0 || len(tokens) > 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("expected one or two dates in %q, found %d", period, len(tokens))
	}

	start, err := parsePeriodDate(tokens[0], loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	last := start
	if len(tokens) == 2 {
		last, err = parsePeriodDate(tokens[1], loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if last.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("period %q ends before it starts", period)
	}

	return start, last.AddDate(0, 0, 1), nil
}

func parsePeriodDate(token string, loc *time.Location) (time.Time, error) {
	layout := "2006-01-02"
	if token[2] == '.' {
		layout = "02.01.2006"
	}
	t, err := time.ParseInLocation(layout, token, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", token, err)
	}
	return t, nil
}
