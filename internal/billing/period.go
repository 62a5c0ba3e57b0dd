package billing

import (
	"fmt"
	"time"

	"timebill/internal/models"
)

// Range is a closed reporting interval.
type Range struct {
	Start time.Time
	End   time.Time
}

// Days returns the range length in whole days, rounded up.
func (r Range) Days() int {
	d := r.End.Sub(r.Start)
	days := int(d.Hours() / 24)
	if time.Duration(days)*24*time.Hour < d {
		days++
	}
	return days
}

type Grouping string

const (
	GroupingDaily   Grouping = "daily"
	GroupingMonthly Grouping = "monthly"
)

// customDailyMaxDays caps how long a custom range can be before its series
// switches from daily to monthly buckets.
const customDailyMaxDays = 31

// ResolvePeriod maps a reporting period to its calendar-aligned range and the
// immediately preceding range of equal length. Weeks start on Monday. Custom
// periods require both dates; their comparison range is shifted back by the
// range's day count.
func ResolvePeriod(period models.TimePeriod, now time.Time, customStart, customEnd *time.Time) (current, previous Range, err error) {
	switch period {
	case models.PeriodWeek:
		current = weekOf(now)
		previous = weekOf(now.AddDate(0, 0, -7))
	case models.PeriodMonth:
		current = monthOf(now)
		previous = monthOf(startOfMonth(now).AddDate(0, -1, 0))
	case models.PeriodYear:
		current = yearOf(now)
		previous = yearOf(now.AddDate(-1, 0, 0))
	case models.PeriodCustom:
		if customStart == nil || customEnd == nil {
			return Range{}, Range{}, fmt.Errorf("custom period requires start and end dates")
		}
		if customEnd.Before(*customStart) {
			return Range{}, Range{}, fmt.Errorf("custom period end %s precedes start %s",
				customEnd.Format("2006-01-02"), customStart.Format("2006-01-02"))
		}
		current = Range{Start: startOfDay(*customStart), End: endOfDay(*customEnd)}
		days := current.Days()
		previous = Range{
			Start: current.Start.AddDate(0, 0, -days),
			End:   current.End.AddDate(0, 0, -days),
		}
	default:
		return Range{}, Range{}, fmt.Errorf("unknown period %q", period)
	}
	return current, previous, nil
}

// GroupingFor returns the series granularity: daily for week/month, monthly
// for year, and for custom ranges daily up to a month's span.
func GroupingFor(period models.TimePeriod, r Range) Grouping {
	switch period {
	case models.PeriodWeek, models.PeriodMonth:
		return GroupingDaily
	case models.PeriodCustom:
		if r.Days() <= customDailyMaxDays {
			return GroupingDaily
		}
		return GroupingMonthly
	default:
		return GroupingMonthly
	}
}

// BucketKey places a timestamp into its series bucket.
func BucketKey(t time.Time, g Grouping) string {
	if g == GroupingDaily {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01")
}

// Bucket is one pre-built, zero-valued series slot.
type Bucket struct {
	Key   string
	Label string
	Date  string
}

// Buckets enumerates every day or month in the range so the series is
// complete even where no activity exists.
func Buckets(period models.TimePeriod, r Range, g Grouping) []Bucket {
	var buckets []Bucket
	if g == GroupingDaily {
		for day := startOfDay(r.Start); !day.After(r.End); day = day.AddDate(0, 0, 1) {
			key := day.Format("2006-01-02")
			label := day.Format("2")
			if period == models.PeriodWeek {
				label = day.Format("Mon 2")
			} else if period == models.PeriodCustom {
				label = day.Format("Jan 2")
			}
			buckets = append(buckets, Bucket{Key: key, Label: label, Date: key})
		}
		return buckets
	}
	for month := startOfMonth(r.Start); !month.After(r.End); month = month.AddDate(0, 1, 0) {
		key := month.Format("2006-01")
		buckets = append(buckets, Bucket{Key: key, Label: month.Format("Jan"), Date: key})
	}
	return buckets
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func weekOf(t time.Time) Range {
	day := startOfDay(t)
	// Monday-based week.
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return Range{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}
}

func monthOf(t time.Time) Range {
	start := startOfMonth(t)
	return Range{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

func yearOf(t time.Time) Range {
	start := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return Range{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}
}
