package sleep

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Engine is the sleep state machine. It owns the session table and performs
// all transitions lazily: every entry point recomputes what state a session
// should be in right now from (now, schedule anchor, awakening score) before
// acting, so no per-session timers exist.
//
// Calls for different session keys run concurrently; calls for the same key
// serialize on a per-session mutex so the read-decay-accumulate-write
// sequence is never interleaved.
type Engine struct {
	params Params
	access *AccessList

	clock func() time.Time
	store Store

	rngMu sync.Mutex
	rng   *rand.Rand

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	mu  sync.Mutex
	rec SessionRecord
}

// NewEngine creates an engine with the given (already validated) params.
func NewEngine(p Params) *Engine {
	return &Engine{
		params:   p,
		access:   NewAccessList(p.Whitelist, p.Blacklist),
		clock:    time.Now,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sessions: make(map[string]*session),
	}
}

// SetClock injects a synthetic time source (tests, sweeper).
func (e *Engine) SetClock(fn func() time.Time) {
	if fn != nil {
		e.clock = fn
	}
}

// SetRand injects the random source used for nightly start jitter, so tests
// can pin the offset and assert exact boundary times.
func (e *Engine) SetRand(r *rand.Rand) {
	if r != nil {
		e.rng = r
	}
}

// SetStore attaches a persistence backend. Every mutation is written through;
// call Restore first when resuming from a previous run.
func (e *Engine) SetStore(s Store) {
	e.store = s
}

// Restore loads previously persisted session records. A zero LastDecay is
// replaced with now so decay does not charge for the downtime.
func (e *Engine) Restore(recs map[string]SessionRecord, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for key, rec := range recs {
		if rec.LastDecay.IsZero() {
			rec.LastDecay = now
		}
		e.sessions[key] = &session{rec: rec}
	}
	if len(recs) > 0 {
		log.Info().Int("sessions", len(recs)).Msg("sleep: restored session records")
	}
}

// Access returns the engine's access list.
func (e *Engine) Access() *AccessList {
	return e.access
}

// session returns the record holder for key, creating a default AWAKE record
// on first contact. First contact is not an error.
func (e *Engine) session(key string) *session {
	e.mu.RLock()
	s := e.sessions[key]
	e.mu.RUnlock()
	if s != nil {
		return s
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if s = e.sessions[key]; s != nil {
		return s
	}
	s = &session{rec: SessionRecord{State: StateAwake}}
	e.sessions[key] = s
	return s
}

// withSession runs fn with exclusive access to the record for key, then
// persists the record if a store is attached.
func (e *Engine) withSession(key string, fn func(rec *SessionRecord)) {
	s := e.session(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.rec.State
	fn(&s.rec)
	if s.rec.State != before {
		log.Info().
			Str("session", key).
			Stringer("from", before).
			Stringer("to", s.rec.State).
			Float64("score", s.rec.Score).
			Msg("sleep: state transition")
	}
	if e.store != nil {
		e.store.SaveSession(key, s.rec)
	}
}

func (e *Engine) sampleOffset() time.Duration {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	span := int64(2*e.params.RandomOffset) + 1
	return time.Duration(e.rng.Int63n(span)) - e.params.RandomOffset
}

// advance recomputes the state the record should be in at now. This is the
// transition table: anchor resolution, end-of-night reset, drowsy onset with
// interaction extension, and WOKEN_UP decay-back evaluated on the same tick
// that lowers the score.
func (e *Engine) advance(rec *SessionRecord, now time.Time) {
	rec.Anchor = resolveSchedule(now, e.params, rec.Anchor, e.sampleOffset)
	sched := rec.Anchor

	if !now.Before(sched.End) {
		// Night over: wake up fresh. The anchor is cleared so the next cycle
		// draws a newly jittered start.
		rec.State = StateAwake
		rec.Score = 0
		rec.LastDecay = now
		rec.WokenSince = time.Time{}
		rec.LastActivity = time.Time{}
		rec.Anchor = NightlySchedule{}
		return
	}

	if now.Before(sched.DrowsyStart) {
		// Daytime. This also catches sessions whose previous cycle expired
		// while nobody was talking: resolveSchedule already rolled the anchor
		// forward, so the end-of-night reset happens here.
		rec.State = StateAwake
		rec.Score = 0
		rec.LastDecay = now
		rec.WokenSince = time.Time{}
		rec.LastActivity = time.Time{}
		return
	}

	// Inside [DrowsyStart, End).
	if rec.State == StateAwake {
		rec.State = StateDrowsy
		rec.LastActivity = time.Time{}
	}
	if rec.State == StateDrowsy {
		onset := sched.Start
		if !rec.LastActivity.IsZero() {
			// Still being talked to: push sleep onset out from the last
			// activity, but never past End.
			if ext := rec.LastActivity.Add(e.params.DrowsyDuration); ext.After(onset) {
				onset = ext
			}
			if onset.After(sched.End) {
				onset = sched.End
			}
		}
		if !now.Before(onset) {
			rec.State = StateSleeping
			rec.LastDecay = now
			rec.LastActivity = time.Time{}
		}
	}

	switch rec.State {
	case StateWoken:
		if applyDecay(rec, e.params, now) < e.params.WakeThreshold {
			rec.State = StateSleeping
			rec.WokenSince = time.Time{}
		}
	case StateSleeping:
		applyDecay(rec, e.params, now)
	}
}

// State returns the session's state at now, advancing time-based transitions.
func (e *Engine) State(key string, now time.Time) State {
	var st State
	e.withSession(key, func(rec *SessionRecord) {
		e.advance(rec, now)
		st = rec.State
	})
	return st
}

// OnQualifyingInteraction records a private message or mention directed at
// the agent. While DROWSY it extends the drowsy window; while SLEEPING it
// accumulates awakening score and flips to WOKEN_UP once the threshold is
// reached. Returns the resulting state.
func (e *Engine) OnQualifyingInteraction(key string, now time.Time) State {
	var st State
	e.withSession(key, func(rec *SessionRecord) {
		e.advance(rec, now)
		e.interact(rec, now)
		st = rec.State
	})
	return st
}

// interact applies one qualifying interaction to an already-advanced record.
func (e *Engine) interact(rec *SessionRecord, now time.Time) {
	switch rec.State {
	case StateDrowsy:
		rec.LastActivity = now
	case StateSleeping:
		if accumulate(rec, e.params, now) >= e.params.WakeThreshold {
			rec.State = StateWoken
			rec.WokenSince = now
		}
	}
}

// ForceState is the admin override: the session is moved to the requested
// state, anchor kept. Forcing WOKEN_UP raises the score past the threshold
// so the next decay tick does not immediately undo the override; the
// schedule still wins on later advances.
func (e *Engine) ForceState(key string, st State) {
	now := e.clock()
	e.withSession(key, func(rec *SessionRecord) {
		rec.State = st
		switch st {
		case StateWoken:
			if rec.WokenSince.IsZero() {
				rec.WokenSince = now
			}
			if rec.Score < e.params.WakeThreshold {
				rec.Score = clampScore(e.params.WakeThreshold+e.params.WakeIncrement, e.params.WakeMax)
			}
			rec.LastDecay = now
		case StateSleeping:
			rec.LastDecay = now
			rec.WokenSince = time.Time{}
		default:
			rec.WokenSince = time.Time{}
		}
	})
}

// Wake forces WOKEN_UP if the session is currently SLEEPING, else no-op. The
// score is raised as if one interaction had pushed it past the threshold, so
// the woken state survives at least until decay brings it back down.
func (e *Engine) Wake(key string) {
	now := e.clock()
	e.withSession(key, func(rec *SessionRecord) {
		e.advance(rec, now)
		if rec.State != StateSleeping {
			return
		}
		rec.Score = clampScore(e.params.WakeThreshold+e.params.WakeIncrement, e.params.WakeMax)
		rec.LastDecay = now
		if rec.Score >= e.params.WakeThreshold {
			rec.State = StateWoken
			rec.WokenSince = now
		}
	})
}

// Status returns a snapshot of one session at now.
func (e *Engine) Status(key string, now time.Time) Snapshot {
	var snap Snapshot
	e.withSession(key, func(rec *SessionRecord) {
		e.advance(rec, now)
		snap = snapshotOf(key, rec)
	})
	return snap
}

// Snapshots returns snapshots of every known session, advanced to now,
// ordered by key.
func (e *Engine) Snapshots(now time.Time) []Snapshot {
	keys := e.keys()
	out := make([]Snapshot, 0, len(keys))
	for _, key := range keys {
		out = append(out, e.Status(key, now))
	}
	return out
}

func (e *Engine) keys() []string {
	e.mu.RLock()
	keys := make([]string, 0, len(e.sessions))
	for k := range e.sessions {
		keys = append(keys, k)
	}
	e.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// RemoveSession drops one session record (admin removal).
func (e *Engine) RemoveSession(key string) {
	e.mu.Lock()
	delete(e.sessions, key)
	e.mu.Unlock()
	if e.store != nil {
		e.store.DeleteSession(key)
	}
}

// Reset drops every session record so all sessions restart AWAKE with fresh
// anchors on next contact.
func (e *Engine) Reset() {
	e.mu.Lock()
	keys := make([]string, 0, len(e.sessions))
	for k := range e.sessions {
		keys = append(keys, k)
	}
	e.sessions = make(map[string]*session)
	e.mu.Unlock()
	if e.store != nil {
		for _, k := range keys {
			e.store.DeleteSession(k)
		}
	}
	log.Info().Int("sessions", len(keys)).Msg("sleep: reset all sessions")
}

func snapshotOf(key string, rec *SessionRecord) Snapshot {
	return Snapshot{
		Key:        key,
		State:      rec.State,
		StateName:  rec.State.String(),
		Mood:       rec.State.Mood(),
		Score:      rec.Score,
		WokenSince: rec.WokenSince,
		Anchor:     rec.Anchor,
	}
}
