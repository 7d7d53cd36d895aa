package sleep

import (
	"fmt"
	"strings"
	"time"
)

// State is the sleep state of one session.
type State int

const (
	StateAwake State = iota
	StateDrowsy
	StateSleeping
	StateWoken
)

var stateNames = map[State]string{
	StateAwake:    "AWAKE",
	StateDrowsy:   "DROWSY",
	StateSleeping: "SLEEPING",
	StateWoken:    "WOKEN_UP",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Mood returns the lowercase mood label used for prompt injection.
func (s State) Mood() string {
	return strings.ToLower(s.String())
}

// ErrUnknownState is returned when an admin command names a state that does not exist.
var ErrUnknownState = fmt.Errorf("unknown sleep state")

// ParseState parses a state name (case-insensitive, "woken" accepted for WOKEN_UP).
func ParseState(s string) (State, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AWAKE":
		return StateAwake, nil
	case "DROWSY":
		return StateDrowsy, nil
	case "SLEEPING":
		return StateSleeping, nil
	case "WOKEN_UP", "WOKEN":
		return StateWoken, nil
	}
	return StateAwake, fmt.Errorf("%w: %q", ErrUnknownState, s)
}

// MessageKind classifies an inbound message for the interception decision.
type MessageKind int

const (
	KindBroadcast MessageKind = iota // ordinary group traffic
	KindPrivate                      // direct message
	KindMention                      // real @mention or reply to the agent
)

func (k MessageKind) String() string {
	switch k {
	case KindPrivate:
		return "private"
	case KindMention:
		return "mention"
	default:
		return "broadcast"
	}
}

// Qualifying reports whether this message kind can disturb a sleeping session.
func (k MessageKind) Qualifying() bool {
	return k == KindPrivate || k == KindMention
}

// Verdict is the outcome of the interception decision.
type Verdict int

const (
	VerdictAllow Verdict = iota
	VerdictSuppress
)

func (v Verdict) String() string {
	if v == VerdictSuppress {
		return "SUPPRESS"
	}
	return "ALLOW"
}

// ClockTime is a time of day (wall clock, no date).
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	var ct ClockTime
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &ct.Hour, &ct.Minute); err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if ct.Hour < 0 || ct.Hour > 23 || ct.Minute < 0 || ct.Minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: out of range", s)
	}
	return ct, nil
}

// On returns the clock time anchored to the calendar day of ref, in ref's location.
func (ct ClockTime) On(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), ct.Hour, ct.Minute, 0, 0, ref.Location())
}

func (ct ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", ct.Hour, ct.Minute)
}

// Params configures the engine. Validated once at load; immutable afterwards.
type Params struct {
	StartTime      ClockTime     // nightly sleep onset (before jitter)
	EndTime        ClockTime     // nightly wake-up
	RandomOffset   time.Duration // uniform jitter applied to StartTime, per night
	DrowsyDuration time.Duration // length of the drowsy window before StartTime
	WakeThreshold  float64       // awakening score needed to reach WOKEN_UP
	WakeIncrement  float64       // score added per qualifying interaction while SLEEPING
	WakeMax        float64       // score ceiling
	DecayPerMinute float64       // score lost per minute
	Whitelist      []string      // session keys that always pass
	Blacklist      []string      // session keys that are always suppressed
}

// Validate rejects configurations the engine cannot run with. WakeThreshold
// above WakeMax is allowed: it simply makes WOKEN_UP unreachable.
func (p Params) Validate() error {
	if p.RandomOffset < 0 {
		return fmt.Errorf("random offset must not be negative")
	}
	if p.DrowsyDuration < 0 {
		return fmt.Errorf("drowsy duration must not be negative")
	}
	if p.WakeMax < 0 {
		return fmt.Errorf("wake max must not be negative")
	}
	if p.WakeIncrement < 0 {
		return fmt.Errorf("wake increment must not be negative")
	}
	if p.DecayPerMinute < 0 {
		return fmt.Errorf("decay per minute must not be negative")
	}
	return nil
}

// SessionRecord is the per-session state the engine mutates and persists.
type SessionRecord struct {
	State        State           `json:"state"`
	Score        float64         `json:"score"`
	LastDecay    time.Time       `json:"last_decay"`
	WokenSince   time.Time       `json:"woken_since,omitempty"`
	LastActivity time.Time       `json:"last_activity,omitempty"` // last qualifying interaction while DROWSY
	Anchor       NightlySchedule `json:"anchor,omitempty"`
}

// Snapshot is a read-only view of one session, for the admin surface.
type Snapshot struct {
	Key        string          `json:"key"`
	State      State           `json:"-"`
	StateName  string          `json:"state"`
	Mood       string          `json:"mood"`
	Score      float64         `json:"score"`
	WokenSince time.Time       `json:"woken_since,omitempty"`
	Anchor     NightlySchedule `json:"anchor,omitempty"`
}

// Store persists session records so state survives restarts. Implementations
// must be safe for concurrent use; the engine calls it while holding the
// session lock, so calls for one key never interleave.
type Store interface {
	SaveSession(key string, rec SessionRecord)
	DeleteSession(key string)
}
