package sleep

import "time"

// Decision is what the interception path gets back for one inbound message:
// the pass/suppress verdict plus the state whose mood text should be injected
// into prompt generation.
type Decision struct {
	Verdict Verdict
	State   State
	Mood    string
	List    ListVerdict
}

// Decide classifies one inbound message. Access lists are checked first:
// whitelisted sessions always pass and never contribute to awakening,
// blacklisted sessions are always suppressed regardless of state. Otherwise
// the verdict follows the current state:
//
//	AWAKE     allow everything
//	DROWSY    allow private/mention (extends the drowsy window, no score), suppress broadcast
//	SLEEPING  private/mention accumulates awakening score and passes only once
//	          WOKEN_UP is reached; broadcast is suppressed and never accumulates
//	WOKEN_UP  allow everything
//
// The only side effect is the state machine mutation for qualifying
// interactions; recording suppressed messages to history is the caller's job.
func (e *Engine) Decide(key string, now time.Time, kind MessageKind) Decision {
	d := Decision{List: e.access.Classify(key)}

	switch d.List {
	case ListWhitelisted:
		d.Verdict = VerdictAllow
		d.State = e.State(key, now)
		d.Mood = d.State.Mood()
		return d
	case ListBlacklisted:
		d.Verdict = VerdictSuppress
		d.State = e.State(key, now)
		d.Mood = d.State.Mood()
		return d
	}

	e.withSession(key, func(rec *SessionRecord) {
		e.advance(rec, now)
		switch rec.State {
		case StateAwake, StateWoken:
			d.Verdict = VerdictAllow
		case StateDrowsy:
			if kind.Qualifying() {
				rec.LastActivity = now
				d.Verdict = VerdictAllow
			} else {
				d.Verdict = VerdictSuppress
			}
		case StateSleeping:
			if kind.Qualifying() {
				e.interact(rec, now)
				if rec.State == StateWoken {
					d.Verdict = VerdictAllow
				} else {
					d.Verdict = VerdictSuppress
				}
			} else {
				d.Verdict = VerdictSuppress
			}
		}
		d.State = rec.State
	})
	d.Mood = d.State.Mood()
	return d
}
