package skills

import (
	"time"

	"github.com/ziadkadry99/cal-pilot/internal/extraction"
)

const (
	defaultLookback  = 14 * 24 * time.Hour
	defaultLookahead = 28 * 24 * time.Hour
)

// SearchBoundary is the date window an event search is scoped to.
type SearchBoundary struct {
	Start time.Time
	End   time.Time
}

// BoundaryFor derives the search window from the extracted date
// payload. A pinned day narrows the window to that civil day; a bare
// weekday narrows it to that weekday in the current week; with no date
// at all the window spans two weeks back to four weeks ahead. The
// window is always returned with Start before End.
func BoundaryFor(now time.Time, loc *time.Location, dt *extraction.DateTimePayload) SearchBoundary {
	now = now.In(loc)

	var b SearchBoundary
	switch {
	case dt != nil && dt.Day != nil:
		year, month := now.Year(), now.Month()
		if dt.Year != nil {
			year = *dt.Year
		}
		if dt.Month != nil {
			month = time.Month(*dt.Month)
		}
		b = dayWindow(time.Date(year, month, *dt.Day, 0, 0, 0, 0, loc))
	case dt != nil && dt.ISOWeekday != nil:
		b = dayWindow(weekdayInWeek(now, *dt.ISOWeekday))
	case dt != nil && len(dt.RelativeTimeFromNow) > 0:
		b = dayWindow(applyRelative(now, dt.RelativeTimeFromNow, dt.RelativeTimeChangeFromNow))
	default:
		b = SearchBoundary{Start: now.Add(-defaultLookback), End: now.Add(defaultLookahead)}
	}

	if b.End.Before(b.Start) {
		b.Start, b.End = b.End, b.Start
	}
	return b
}

func dayWindow(day time.Time) SearchBoundary {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return SearchBoundary{Start: start, End: start.Add(24*time.Hour - time.Second)}
}

// weekdayInWeek returns the date of the given ISO weekday (Monday = 1)
// within the Monday-based week containing ref.
func weekdayInWeek(ref time.Time, isoWeekday int) time.Time {
	current := int(ref.Weekday())
	if current == 0 {
		current = 7 // Sunday
	}
	return ref.AddDate(0, 0, isoWeekday-current)
}

func applyRelative(base time.Time, offsets []extraction.RelativeTime, change string) time.Time {
	sign := 1
	if change == "subtract" {
		sign = -1
	}
	t := base
	for _, off := range offsets {
		v := sign * off.Value
		switch off.Unit {
		case "minute":
			t = t.Add(time.Duration(v) * time.Minute)
		case "hour":
			t = t.Add(time.Duration(v) * time.Hour)
		case "day":
			t = t.AddDate(0, 0, v)
		case "week":
			t = t.AddDate(0, 0, 7*v)
		case "month":
			t = t.AddDate(0, v, 0)
		case "year":
			t = t.AddDate(v, 0, 0)
		}
	}
	return t
}
