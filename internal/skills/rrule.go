package skills

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/ziadkadry99/cal-pilot/internal/calendar"
)

var rruleFrequencies = map[calendar.RecurrenceFrequency]rrule.Frequency{
	calendar.FreqDaily:   rrule.DAILY,
	calendar.FreqWeekly:  rrule.WEEKLY,
	calendar.FreqMonthly: rrule.MONTHLY,
	calendar.FreqYearly:  rrule.YEARLY,
}

var rruleWeekdays = map[string]rrule.Weekday{
	"MO": rrule.MO, "TU": rrule.TU, "WE": rrule.WE, "TH": rrule.TH,
	"FR": rrule.FR, "SA": rrule.SA, "SU": rrule.SU,
}

// BuildRRule renders a recurrence rule to its RRULE string, anchored at
// the event start.
func BuildRRule(rule *calendar.RecurrenceRule, start time.Time) (string, error) {
	if rule == nil {
		return "", nil
	}
	freq, ok := rruleFrequencies[rule.Frequency]
	if !ok {
		return "", fmt.Errorf("unknown recurrence frequency %q", rule.Frequency)
	}

	opts := rrule.ROption{
		Freq:     freq,
		Interval: rule.Interval,
		Dtstart:  start,
		Count:    rule.Occurrence,
	}
	if rule.EndDate != "" {
		until, err := time.Parse(time.RFC3339, rule.EndDate)
		if err != nil {
			return "", fmt.Errorf("parsing recurrence end date: %w", err)
		}
		opts.Until = until.UTC()
	}
	for _, wd := range rule.ByWeekDay {
		day, ok := rruleWeekdays[wd]
		if !ok {
			return "", fmt.Errorf("unknown weekday %q", wd)
		}
		opts.Byweekday = append(opts.Byweekday, day)
	}
	opts.Bymonthday = append(opts.Bymonthday, rule.ByMonthDay...)

	r, err := rrule.NewRRule(opts)
	if err != nil {
		return "", fmt.Errorf("building recurrence rule: %w", err)
	}
	return r.String(), nil
}

// RecurrenceFromParam converts an extracted recurrence into the stored
// rule form.
func RecurrenceFromParam(frequency string, interval int, byWeekDay []string, byMonthDay []int, occurrence int, endDate string) (*calendar.RecurrenceRule, error) {
	if frequency == "" {
		return nil, nil
	}
	freq := calendar.RecurrenceFrequency(frequency)
	if _, ok := rruleFrequencies[freq]; !ok {
		return nil, fmt.Errorf("unknown recurrence frequency %q", frequency)
	}
	if interval <= 0 {
		interval = 1
	}
	if endDate != "" {
		if _, err := time.Parse(time.RFC3339, endDate); err != nil {
			return nil, fmt.Errorf("parsing recurrence end date: %w", err)
		}
	}
	return &calendar.RecurrenceRule{
		Frequency:  freq,
		Interval:   interval,
		ByWeekDay:  byWeekDay,
		ByMonthDay: byMonthDay,
		Occurrence: occurrence,
		EndDate:    endDate,
	}, nil
}
