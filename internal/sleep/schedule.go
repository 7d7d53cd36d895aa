package sleep

import "time"

// NightlySchedule is the resolved schedule for one night: jittered start,
// drowsy window opening, and wake-up time. Fixed for the duration of a cycle.
type NightlySchedule struct {
	DrowsyStart time.Time `json:"drowsy_start"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}

func (n NightlySchedule) IsZero() bool {
	return n.Start.IsZero()
}

// ValidFor reports whether this anchor still describes "tonight" as seen from now.
// An anchor stays valid until its End passes, so mid-cycle calls never re-jitter.
func (n NightlySchedule) ValidFor(now time.Time) bool {
	if n.IsZero() {
		return false
	}
	return !now.After(n.End) && now.After(n.DrowsyStart.Add(-24*time.Hour))
}

// Contains reports whether now falls within [DrowsyStart, End).
func (n NightlySchedule) Contains(now time.Time) bool {
	return !now.Before(n.DrowsyStart) && now.Before(n.End)
}

func (n NightlySchedule) shift(d time.Duration) NightlySchedule {
	return NightlySchedule{
		DrowsyStart: n.DrowsyStart.Add(d),
		Start:       n.Start.Add(d),
		End:         n.End.Add(d),
	}
}

// resolveSchedule returns the schedule anchor for the night now belongs to.
// A still-valid existing anchor is returned unchanged. Otherwise a fresh one
// is computed from params, with the start perturbed by jitter(). Pure aside
// from the jitter sample; the caller persists the result.
//
// End is interpreted on the following calendar day when the configured end
// does not follow the (jittered) start, so "23:30 to 07:30" works, and so does
// resolving at 02:00 inside a cycle that began yesterday evening.
func resolveSchedule(now time.Time, p Params, existing NightlySchedule, jitter func() time.Duration) NightlySchedule {
	if existing.ValidFor(now) {
		return existing
	}

	start := p.StartTime.On(now)
	if p.RandomOffset > 0 && jitter != nil {
		start = start.Add(jitter())
	}
	end := p.EndTime.On(now)
	for !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	sched := NightlySchedule{
		DrowsyStart: start.Add(-p.DrowsyDuration),
		Start:       start,
		End:         end,
	}

	// now may sit inside the cycle that began on the previous calendar day.
	if now.Before(sched.DrowsyStart) {
		if prev := sched.shift(-24 * time.Hour); prev.Contains(now) {
			return prev
		}
	}
	// Tonight's cycle already over: the next one is tomorrow's.
	if !now.Before(sched.End) {
		return sched.shift(24 * time.Hour)
	}
	return sched
}
