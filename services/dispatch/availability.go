package dispatch

import (
	"sort"
	"time"

	"serviq/models"
)

// Default weekly template when a worker has not configured one:
// Sunday off, Monday-Saturday 09:00-18:00.
var defaultWeekly = []models.WeeklyWindow{
	{Day: 0, IsOff: true},
	{Day: 1, Start: "09:00", End: "18:00"},
	{Day: 2, Start: "09:00", End: "18:00"},
	{Day: 3, Start: "09:00", End: "18:00"},
	{Day: 4, Start: "09:00", End: "18:00"},
	{Day: 5, Start: "09:00", End: "18:00"},
	{Day: 6, Start: "09:00", End: "18:00"},
}

// parseHHMM converts "HH:MM" to minute-of-day.
func parseHHMM(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' ||
		s[3] < '0' || s[3] > '9' || s[4] < '0' || s[4] > '9' {
		return 0, false
	}
	if h > 23 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// localDayMinute resolves an instant to the worker's local weekday and
// minute-of-day using an IANA timezone identifier. Empty tz means UTC.
func localDayMinute(t time.Time, tz string) (time.Weekday, int, error) {
	loc := time.UTC
	if tz != "" {
		var err error
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return 0, 0, err
		}
	}
	lt := t.In(loc)
	return lt.Weekday(), lt.Hour()*60 + lt.Minute(), nil
}

// IsAvailable reports whether a worker calendar admits a booking at slot,
// evaluated at now. Pure: identical inputs give identical results.
//
// Order of checks: past/immediate slots are always rejected; the platform
// always-open override then bypasses notice, blocked-slot and weekly
// checks; otherwise minimum notice, exact-minute blocked slots and the
// weekly template (end-inclusive) all apply.
func IsAvailable(cal models.AvailabilityCalendar, slot, now time.Time, alwaysOpen bool) bool {
	slot = slot.Truncate(time.Minute)
	if !slot.After(now) {
		return false
	}
	if alwaysOpen {
		return true
	}
	if cal.MinNoticeMinutes > 0 {
		notice := time.Duration(cal.MinNoticeMinutes) * time.Minute
		if now.Add(notice).After(slot) {
			return false
		}
	}
	for _, blocked := range cal.BlockedSlots {
		if blocked.Truncate(time.Minute).Equal(slot) {
			return false
		}
	}

	wd, minute, err := localDayMinute(slot, cal.Timezone)
	if err != nil {
		// Unresolvable timezone fails closed.
		return false
	}
	weekly := cal.Weekly
	if len(weekly) == 0 {
		weekly = defaultWeekly
	}
	for _, w := range weekly {
		if w.Day != int(wd) {
			continue
		}
		if w.IsOff {
			return false
		}
		start, okS := parseHHMM(w.Start)
		end, okE := parseHHMM(w.End)
		if !okS || !okE || end <= start {
			// A zero or negative window is always unavailable.
			return false
		}
		return start <= minute && minute <= end
	}
	// No entry for this weekday.
	return false
}

// SanitizeBlockedSlots drops past entries, de-duplicates to minute
// granularity, caps the list at limit and returns it sorted ascending.
// Applied whenever a worker calendar is persisted, to bound growth.
func SanitizeBlockedSlots(slots []time.Time, now time.Time, limit int) []time.Time {
	seen := make(map[int64]struct{}, len(slots))
	out := make([]time.Time, 0, len(slots))
	for _, s := range slots {
		s = s.UTC().Truncate(time.Minute)
		if !s.After(now) {
			continue
		}
		key := s.Unix()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
