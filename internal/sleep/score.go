package sleep

import "time"

// applyDecay brings rec.Score current as of now and returns it. Elapsed time
// since the last decay is charged at DecayPerMinute; the score is clamped to
// [0, WakeMax]. Calling twice with the same now is a no-op the second time.
// A zero LastDecay (fresh record, or restored from a store that predates the
// field) is treated as now so no decay cliff occurs.
func applyDecay(rec *SessionRecord, p Params, now time.Time) float64 {
	if rec.LastDecay.IsZero() {
		rec.LastDecay = now
		rec.Score = clampScore(rec.Score, p.WakeMax)
		return rec.Score
	}
	elapsed := now.Sub(rec.LastDecay)
	if elapsed > 0 {
		rec.Score -= elapsed.Minutes() * p.DecayPerMinute
		rec.LastDecay = now
	}
	rec.Score = clampScore(rec.Score, p.WakeMax)
	return rec.Score
}

// accumulate applies decay first, then adds one interaction's worth of
// awakening, clamped to WakeMax.
func accumulate(rec *SessionRecord, p Params, now time.Time) float64 {
	applyDecay(rec, p, now)
	rec.Score = clampScore(rec.Score+p.WakeIncrement, p.WakeMax)
	return rec.Score
}

func clampScore(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
