package skills

import (
	"strconv"
	"strings"
	"time"

	"github.com/ziadkadry99/cal-pilot/internal/extraction"
)

// ExtrapolateStart projects the event's new start time from the
// extracted date payload. Components the payload pins override the
// corresponding components of the old start; everything the user left
// unsaid keeps its old value. Relative offsets are applied to now
// instead of the old start, since "in two hours" means two hours from
// the conversation.
func ExtrapolateStart(oldStart, now time.Time, loc *time.Location, dt *extraction.DateTimePayload) time.Time {
	t := oldStart.In(loc)
	if dt == nil {
		return t
	}

	if len(dt.RelativeTimeFromNow) > 0 {
		t = applyRelative(now.In(loc), dt.RelativeTimeFromNow, dt.RelativeTimeChangeFromNow)
	}

	year, month, day := t.Year(), t.Month(), t.Day()
	if dt.Year != nil {
		year = *dt.Year
	}
	if dt.Month != nil {
		month = time.Month(*dt.Month)
	}
	if dt.Day != nil {
		day = *dt.Day
	}
	t = time.Date(year, month, day, t.Hour(), t.Minute(), 0, 0, loc)

	if dt.ISOWeekday != nil {
		moved := weekdayInWeek(now.In(loc), *dt.ISOWeekday)
		t = time.Date(moved.Year(), moved.Month(), moved.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	}

	hour, minute := t.Hour(), t.Minute()
	if h, m, ok := parseClock(dt.StartTime); ok {
		hour, minute = h, m
	} else {
		if dt.Hour != nil {
			hour = *dt.Hour
		}
		if dt.Minute != nil {
			minute = *dt.Minute
		}
	}
	t = time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, loc)

	if dt.AllDay != nil && *dt.AllDay {
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
	return t
}

// ResolveEnd picks the event's new end time. An explicitly stated end
// time wins over a stated duration, which wins over keeping the old
// span.
func ResolveEnd(start time.Time, oldDuration time.Duration, dt *extraction.DateTimePayload) (time.Time, time.Duration) {
	if dt != nil {
		if h, m, ok := parseClock(dt.EndTime); ok {
			end := time.Date(start.Year(), start.Month(), start.Day(), h, m, 0, 0, start.Location())
			if !end.After(start) {
				end = end.AddDate(0, 0, 1)
			}
			return end, end.Sub(start)
		}
		if dt.Duration != nil && *dt.Duration > 0 {
			d := time.Duration(*dt.Duration) * time.Minute
			return start.Add(d), d
		}
	}
	if oldDuration <= 0 {
		oldDuration = 30 * time.Minute
	}
	return start.Add(oldDuration), oldDuration
}

func parseClock(s string) (hour, minute int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, false
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, false
	}
	return h, m, true
}
