package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDateRange is returned for --deadline values ParseDateRange cannot read
var ErrInvalidDateRange = errors.New("invalid date range")

const monthPattern = `(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december)`

var (
	// "Mar 1-15"
	sameMonthRange = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*(\d{1,2})$`)
	// "Mar 1 - Apr 15"
	crossMonthRange = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*` + monthPattern + `\s+(\d{1,2})$`)
	// "March"
	wholeMonth = regexp.MustCompile(`(?i)^` + monthPattern + `$`)
)

var months = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// ParseDateRange parses a deadline range for the list command.
//
// Supported formats:
//   - "Mar 1-15" or "March 1-15"
//   - "March 1 - April 15"
//   - "March" (the whole month)
//
// A month earlier than now's month is taken to be next year. In a
// cross-month range the end rolls into the following year when its month
// precedes the start month ("Dec 20 - Jan 10").
//
// The range is inclusive: from is 00:00:00 UTC on the first day, to is
// 23:59:59 UTC on the last.
func ParseDateRange(input string, now time.Time) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("%w: empty", ErrInvalidDateRange)
	}

	if m := sameMonthRange.FindStringSubmatch(input); m != nil {
		return dayRange(m[1], m[2], m[1], m[3], now)
	}
	if m := crossMonthRange.FindStringSubmatch(input); m != nil {
		return dayRange(m[1], m[2], m[3], m[4], now)
	}
	if m := wholeMonth.FindStringSubmatch(input); m != nil {
		month := parseMonth(m[1])
		year := getYearForMonth(month, now)
		from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		// Day 0 of the next month is the last day of this one
		to := time.Date(year, month+1, 0, 23, 59, 59, 0, time.UTC)
		return &from, &to, nil
	}

	return nil, nil, fmt.Errorf("%w: %q (use 'Mar 1-15', 'March 1 - April 15' or 'March')", ErrInvalidDateRange, input)
}

func dayRange(startMonth, startDay, endMonth, endDay string, now time.Time) (*time.Time, *time.Time, error) {
	m1, m2 := parseMonth(startMonth), parseMonth(endMonth)

	y1 := getYearForMonth(m1, now)
	y2 := y1
	if m2 < m1 {
		y2++
	}

	from, err := date(y1, m1, startDay)
	if err != nil {
		return nil, nil, err
	}
	to, err := date(y2, m2, endDay)
	if err != nil {
		return nil, nil, err
	}
	to = to.Add(24*time.Hour - time.Second)

	if from.After(to) {
		return nil, nil, fmt.Errorf("%w: start date must be before end date", ErrInvalidDateRange)
	}
	return &from, &to, nil
}

// date builds midnight UTC, rejecting days the month does not have
func date(year int, month time.Month, day string) (time.Time, error) {
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 {
		return time.Time{}, fmt.Errorf("%w: invalid day %s", ErrInvalidDateRange, day)
	}
	t := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
	if t.Month() != month {
		return time.Time{}, fmt.Errorf("%w: %s has no day %d", ErrInvalidDateRange, month, d)
	}
	return t, nil
}

// parseMonth converts a month name to time.Month, or 0 if unknown
func parseMonth(name string) time.Month {
	return months[strings.ToLower(strings.TrimSpace(name))]
}

// getYearForMonth returns now's year, or the next one if month has passed
func getYearForMonth(month time.Month, now time.Time) int {
	if month < now.Month() {
		return now.Year() + 1
	}
	return now.Year()
}
