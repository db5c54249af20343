// Package timeline is the pure computation core of the Gantt view: the
// date-to-pixel temporal model, the hierarchy index, and the derived
// progress/span decoration. Nothing in this package touches storage or a
// rendering surface; every function is a deterministic transform of its
// inputs.
package timeline

import (
	"fmt"
	"strconv"
	"time"

	"github.com/atelierworks/timberline/internal/domain"
)

type ViewMode string

const (
	ViewDay   ViewMode = "day"
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

// DateRange is an inclusive calendar span at UTC-midnight granularity.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// TotalDays returns the inclusive day count of the range, never below 1.
func (r DateRange) TotalDays() int {
	d := domain.DaysBetween(r.Start, r.End) + 1
	if d < 1 {
		return 1
	}
	return d
}

// Contains reports whether the date falls inside the range.
func (r DateRange) Contains(d time.Time) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Column is one cell of the header grid.
type Column struct {
	Date      time.Time
	Label     string
	IsToday   bool
	IsWeekend bool
}

// GenerateColumns materializes the header grid for a range: one column per
// day, ISO week, or month depending on the view mode. The sequence is
// finite and deterministic; today decides the IsToday flag.
func GenerateColumns(rng DateRange, mode ViewMode, today time.Time) []Column {
	today = domain.DateOnly(today)
	start := domain.DateOnly(rng.Start)
	end := domain.DateOnly(rng.End)

	var cols []Column
	switch mode {
	case ViewWeek:
		for d := start; !d.After(end); d = d.AddDate(0, 0, 7) {
			_, week := d.ISOWeek()
			cols = append(cols, Column{
				Date:      d,
				Label:     fmt.Sprintf("W%d", week),
				IsToday:   sameWeek(d, today),
				IsWeekend: isWeekend(d),
			})
		}
	case ViewMonth:
		for d := start; !d.After(end); d = nextMonth(d) {
			cols = append(cols, Column{
				Date:      d,
				Label:     d.Format("Jan"),
				IsToday:   d.Year() == today.Year() && d.Month() == today.Month(),
				IsWeekend: isWeekend(d),
			})
		}
	default: // ViewDay
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			cols = append(cols, Column{
				Date:      d,
				Label:     strconv.Itoa(d.Day()),
				IsToday:   d.Equal(today),
				IsWeekend: isWeekend(d),
			})
		}
	}
	return cols
}

// BarGeometry is the horizontal placement of one item's bar in pixels.
type BarGeometry struct {
	Left  float64
	Width float64
}

// CalculateBarPosition maps an item's span onto the pixel axis of the
// range. Width is floored at MinBarWidthPx so short items stay clickable.
func CalculateBarPosition(item *domain.ScheduleItem, rng DateRange, totalWidthPx float64) BarGeometry {
	pixelsPerDay := totalWidthPx / float64(rng.TotalDays())
	left := float64(domain.DaysBetween(rng.Start, item.StartDate)) * pixelsPerDay
	width := float64(item.DurationDays()) * pixelsPerDay
	if width < domain.MinBarWidthPx {
		width = domain.MinBarWidthPx
	}
	return BarGeometry{Left: left, Width: width}
}

// WeekendSettings controls which weekend days count as workdays. It only
// affects CalculateWorkDays; all other date math uses plain calendar days.
type WeekendSettings struct {
	IncludeSaturday bool
	IncludeSunday   bool
}

// CalculateWorkDays counts the days of the inclusive span that are
// workdays under the given weekend policy.
func CalculateWorkDays(start, end time.Time, ws WeekendSettings) int {
	start = domain.DateOnly(start)
	end = domain.DateOnly(end)
	if end.Before(start) {
		return 0
	}
	if ws.IncludeSaturday && ws.IncludeSunday {
		return domain.DaysBetween(start, end) + 1
	}
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday:
			if ws.IncludeSaturday {
				count++
			}
		case time.Sunday:
			if ws.IncludeSunday {
				count++
			}
		default:
			count++
		}
	}
	return count
}

// DefaultRange is the synthetic range used when a project has no items
// yet: two weeks back, three months ahead. Keeps the grid non-degenerate.
func DefaultRange(today time.Time) DateRange {
	today = domain.DateOnly(today)
	return DateRange{
		Start: today.AddDate(0, 0, -14),
		End:   today.AddDate(0, 3, 0),
	}
}

// RangeFromItems returns the envelope of all item spans, or DefaultRange
// when the set is empty.
func RangeFromItems(items []*domain.ScheduleItem, today time.Time) DateRange {
	if len(items) == 0 {
		return DefaultRange(today)
	}
	rng := DateRange{Start: items[0].StartDate, End: items[0].EndDate}
	for _, item := range items[1:] {
		if item.StartDate.Before(rng.Start) {
			rng.Start = item.StartDate
		}
		if item.EndDate.After(rng.End) {
			rng.End = item.EndDate
		}
	}
	return rng
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func sameWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

func nextMonth(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
