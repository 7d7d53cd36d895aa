package sleep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{
		StartTime:      ClockTime{23, 30},
		EndTime:        ClockTime{7, 30},
		RandomOffset:   0,
		DrowsyDuration: 30 * time.Minute,
		WakeThreshold:  50,
		WakeIncrement:  20,
		WakeMax:        80,
		DecayPerMinute: 5,
	}
}

func at(day, hour, min int) time.Time {
	return time.Date(2025, 6, day, hour, min, 0, 0, time.UTC)
}

func TestResolveScheduleEvening(t *testing.T) {
	sched := resolveSchedule(at(10, 22, 0), testParams(), NightlySchedule{}, nil)

	assert.Equal(t, at(10, 23, 0), sched.DrowsyStart)
	assert.Equal(t, at(10, 23, 30), sched.Start)
	assert.Equal(t, at(11, 7, 30), sched.End)
}

func TestResolveScheduleAfterMidnight(t *testing.T) {
	// 02:00 belongs to the cycle that started the previous evening.
	now := at(10, 2, 0)
	sched := resolveSchedule(now, testParams(), NightlySchedule{}, nil)

	assert.Equal(t, at(9, 23, 30), sched.Start)
	assert.Equal(t, at(10, 7, 30), sched.End)
	assert.True(t, sched.Contains(now))
}

func TestResolveScheduleAfterEnd(t *testing.T) {
	// Morning after wake-up: the anchor is for the upcoming night.
	sched := resolveSchedule(at(10, 8, 0), testParams(), NightlySchedule{}, nil)

	assert.Equal(t, at(10, 23, 30), sched.Start)
	assert.Equal(t, at(11, 7, 30), sched.End)
}

func TestResolveScheduleMidnightStart(t *testing.T) {
	p := testParams()
	p.StartTime = ClockTime{0, 0}

	// 23:45 sits in the drowsy window of a cycle starting at midnight.
	now := at(1, 23, 45)
	sched := resolveSchedule(now, p, NightlySchedule{}, nil)

	assert.Equal(t, at(1, 23, 30), sched.DrowsyStart)
	assert.Equal(t, at(2, 0, 0), sched.Start)
	assert.Equal(t, at(2, 7, 30), sched.End)
	assert.True(t, sched.Contains(now))
}

func TestResolveScheduleReusesValidAnchor(t *testing.T) {
	p := testParams()
	existing := resolveSchedule(at(10, 22, 0), p, NightlySchedule{}, nil)

	// Mid-cycle resolution must return the anchor unchanged, never re-jitter.
	jitter := func() time.Duration { t.Fatal("jitter sampled for a valid anchor"); return 0 }
	p.RandomOffset = 30 * time.Minute
	got := resolveSchedule(at(11, 3, 0), p, existing, jitter)
	assert.Equal(t, existing, got)
}

func TestResolveScheduleJitterShiftsStart(t *testing.T) {
	p := testParams()
	p.RandomOffset = 30 * time.Minute

	for _, offset := range []time.Duration{-30 * time.Minute, 0, 30 * time.Minute} {
		sched := resolveSchedule(at(10, 12, 0), p, NightlySchedule{}, func() time.Duration { return offset })
		assert.Equal(t, at(10, 23, 30).Add(offset), sched.Start)
		assert.Equal(t, sched.Start.Add(-p.DrowsyDuration), sched.DrowsyStart)
		assert.True(t, sched.End.After(sched.Start))
	}
}

func TestNightlyScheduleValidFor(t *testing.T) {
	sched := resolveSchedule(at(10, 22, 0), testParams(), NightlySchedule{}, nil)

	assert.True(t, sched.ValidFor(at(10, 23, 45)))
	assert.True(t, sched.ValidFor(at(11, 7, 30)))
	assert.False(t, sched.ValidFor(at(11, 7, 31)))
	assert.False(t, NightlySchedule{}.ValidFor(at(10, 22, 0)))
}

func TestParseClockTime(t *testing.T) {
	ct, err := ParseClockTime("23:30")
	require.NoError(t, err)
	assert.Equal(t, ClockTime{23, 30}, ct)
	assert.Equal(t, "23:30", ct.String())

	for _, bad := range []string{"24:00", "12:60", "-1:00", "noon", ""} {
		_, err := ParseClockTime(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
