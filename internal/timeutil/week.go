package timeutil

import "time"

// Window is a UTC interval, start inclusive, end exclusive.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// WeekWindow returns the UTC interval of the 7-local-day week in loc,
// starting Monday 00:00 local time, shifted by weekOffset whole weeks
// from the current week.
func WeekWindow(loc *time.Location, weekOffset int) Window {
	return WeekWindowAt(time.Now(), loc, weekOffset)
}

// WeekWindowAt is WeekWindow anchored at an explicit instant.
//
// Both boundaries are built with time.Date from a plain local date, so the
// end of window k and the start of window k+1 are the same instant even
// when a DST transition removes or repeats the midnight hour. A local day
// crossing a DST change is not 24h long in UTC; the window absorbs that
// rather than padding to a fixed 168 hours.
func WeekWindowAt(now time.Time, loc *time.Location, weekOffset int) Window {
	local := now.In(loc)
	// Days since Monday: Monday=0 .. Sunday=6.
	sinceMonday := (int(local.Weekday()) + 6) % 7
	year, month, day := local.Date()

	start := time.Date(year, month, day-sinceMonday+7*weekOffset, 0, 0, 0, 0, loc)
	end := time.Date(year, month, day-sinceMonday+7*(weekOffset+1), 0, 0, 0, 0, loc)

	return Window{Start: start.UTC(), End: end.UTC()}
}
