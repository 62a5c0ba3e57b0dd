package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timebill/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriodWeekStartsMonday(t *testing.T) {
	// Thursday 2025-06-12.
	now := time.Date(2025, time.June, 12, 15, 30, 0, 0, time.UTC)

	current, previous, err := ResolvePeriod(models.PeriodWeek, now, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, date(2025, time.June, 9), current.Start)
	assert.Equal(t, time.Monday, current.Start.Weekday())
	assert.Equal(t, 15, current.End.Day())
	assert.Equal(t, date(2025, time.June, 2), previous.Start)
}

func TestResolvePeriodWeekOnMonday(t *testing.T) {
	// A Monday must anchor its own week, not the previous one.
	now := time.Date(2025, time.June, 9, 0, 30, 0, 0, time.UTC)

	current, _, err := ResolvePeriod(models.PeriodWeek, now, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.June, 9), current.Start)
}

func TestResolvePeriodMonth(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

	current, previous, err := ResolvePeriod(models.PeriodMonth, now, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, date(2025, time.March, 1), current.Start)
	assert.Equal(t, 31, current.End.Day())
	assert.Equal(t, date(2025, time.February, 1), previous.Start)
	assert.Equal(t, 28, previous.End.Day())
}

func TestResolvePeriodYear(t *testing.T) {
	now := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)

	current, previous, err := ResolvePeriod(models.PeriodYear, now, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, date(2025, time.January, 1), current.Start)
	assert.Equal(t, 2025, current.End.Year())
	assert.Equal(t, date(2024, time.January, 1), previous.Start)
}

func TestResolvePeriodCustom(t *testing.T) {
	start := date(2025, time.May, 1)
	end := date(2025, time.May, 10)

	current, previous, err := ResolvePeriod(models.PeriodCustom, time.Now(), &start, &end)
	require.NoError(t, err)

	assert.Equal(t, start, current.Start)
	assert.Equal(t, 10, current.Days())
	// Comparison window is the same length immediately before.
	assert.Equal(t, date(2025, time.April, 21), previous.Start)
}

func TestResolvePeriodCustomValidation(t *testing.T) {
	start := date(2025, time.May, 10)
	end := date(2025, time.May, 1)

	_, _, err := ResolvePeriod(models.PeriodCustom, time.Now(), &start, &end)
	assert.Error(t, err)

	_, _, err = ResolvePeriod(models.PeriodCustom, time.Now(), nil, nil)
	assert.Error(t, err)

	_, _, err = ResolvePeriod(models.TimePeriod("quarter"), time.Now(), nil, nil)
	assert.Error(t, err)
}

func TestGroupingFor(t *testing.T) {
	assert.Equal(t, GroupingDaily, GroupingFor(models.PeriodWeek, Range{}))
	assert.Equal(t, GroupingDaily, GroupingFor(models.PeriodMonth, Range{}))
	assert.Equal(t, GroupingMonthly, GroupingFor(models.PeriodYear, Range{}))

	short := Range{Start: date(2025, time.May, 1), End: date(2025, time.May, 31)}
	assert.Equal(t, GroupingDaily, GroupingFor(models.PeriodCustom, short))

	long := Range{Start: date(2025, time.May, 1), End: date(2025, time.July, 15)}
	assert.Equal(t, GroupingMonthly, GroupingFor(models.PeriodCustom, long))
}

func TestBucketsWeek(t *testing.T) {
	now := time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC)
	current, _, err := ResolvePeriod(models.PeriodWeek, now, nil, nil)
	require.NoError(t, err)

	buckets := Buckets(models.PeriodWeek, current, GroupingDaily)
	require.Len(t, buckets, 7)
	assert.Equal(t, "2025-06-09", buckets[0].Key)
	assert.Equal(t, "Mon 9", buckets[0].Label)
	assert.Equal(t, "2025-06-15", buckets[6].Key)
}

func TestBucketsMonthZeroFilled(t *testing.T) {
	now := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	current, _, err := ResolvePeriod(models.PeriodMonth, now, nil, nil)
	require.NoError(t, err)

	buckets := Buckets(models.PeriodMonth, current, GroupingDaily)
	require.Len(t, buckets, 31)
	assert.Equal(t, "1", buckets[0].Label)
	assert.Equal(t, "31", buckets[30].Label)
}

func TestBucketsYear(t *testing.T) {
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	current, _, err := ResolvePeriod(models.PeriodYear, now, nil, nil)
	require.NoError(t, err)

	buckets := Buckets(models.PeriodYear, current, GroupingMonthly)
	require.Len(t, buckets, 12)
	assert.Equal(t, "2025-01", buckets[0].Key)
	assert.Equal(t, "Jan", buckets[0].Label)
	assert.Equal(t, "Dec", buckets[11].Label)
}

func TestBucketKey(t *testing.T) {
	ts := time.Date(2025, time.March, 7, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-07", BucketKey(ts, GroupingDaily))
	assert.Equal(t, "2025-03", BucketKey(ts, GroupingMonthly))
}
