package bot

import (
	"strconv"
	"strings"
	"time"

	"github.com/graaaaa/pomwars/internal/clock"
)

// parseDateRange interprets the date arguments of total, actions and
// create_event. Accepted forms:
//
//	today
//	yesterday
//	<month> <day> <month> <day>   e.g. "June 15 July 1"
//
// Month-name ranges use now's year; when the end falls before the start the
// end rolls into the next year. The returned range covers whole days:
// start is midnight UTC and end is the exclusive midnight after the last day.
func parseDateRange(args []string, now time.Time) (start, end time.Time, err error) {
	switch {
	case len(args) == 1 && strings.EqualFold(args[0], "today"):
		start, end = clock.UTCDay(now)
		return start, end, nil
	case len(args) == 1 && strings.EqualFold(args[0], "yesterday"):
		start, end = clock.UTCDay(now.AddDate(0, 0, -1))
		return start, end, nil
	case len(args) == 4:
		return parseMonthDayRange(args, now)
	default:
		return time.Time{}, time.Time{}, usagef("I need a date range like `June 15 July 1`, or `today`/`yesterday`.")
	}
}

func parseMonthDayRange(args []string, now time.Time) (start, end time.Time, err error) {
	startMonth, ok := parseMonth(args[0])
	if !ok {
		return start, end, usagef("%q is not a month I know.", args[0])
	}
	startDay, err := parseDay(args[1])
	if err != nil {
		return start, end, err
	}
	endMonth, ok := parseMonth(args[2])
	if !ok {
		return start, end, usagef("%q is not a month I know.", args[2])
	}
	endDay, err := parseDay(args[3])
	if err != nil {
		return start, end, err
	}

	year := now.UTC().Year()
	start = time.Date(year, startMonth, startDay, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, endMonth, endDay, 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		// December 20 .. January 5 rolls into the next year.
		end = end.AddDate(1, 0, 0)
	}
	end = end.AddDate(0, 0, 1)
	return start, end, nil
}

func parseDay(s string) (int, error) {
	d, err := strconv.Atoi(s)
	if err != nil || d < 1 || d > 31 {
		return 0, usagef("%q is not a day of the month.", s)
	}
	return d, nil
}

// parseMonth accepts full English month names or three-letter prefixes,
// case-insensitively.
func parseMonth(s string) (time.Month, bool) {
	s = strings.ToLower(s)
	if len(s) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if s == name || s == name[:3] {
			return m, true
		}
	}
	return 0, false
}
