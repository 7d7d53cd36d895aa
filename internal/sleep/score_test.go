package sleep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDecay(t *testing.T) {
	p := testParams()
	now := at(10, 1, 0)

	rec := SessionRecord{Score: 30, LastDecay: now}
	got := applyDecay(&rec, p, now.Add(2*time.Minute))
	assert.InDelta(t, 20, got, 1e-9)
	assert.Equal(t, now.Add(2*time.Minute), rec.LastDecay)

	// Same instant again: no double charge.
	got = applyDecay(&rec, p, now.Add(2*time.Minute))
	assert.InDelta(t, 20, got, 1e-9)
}

func TestApplyDecayClampsAtZero(t *testing.T) {
	p := testParams()
	now := at(10, 1, 0)

	rec := SessionRecord{Score: 10, LastDecay: now}
	got := applyDecay(&rec, p, now.Add(time.Hour))
	assert.Zero(t, got)
	assert.Zero(t, rec.Score)
}

func TestApplyDecayZeroLastDecay(t *testing.T) {
	// A restored record with no decay timestamp must not be charged for the
	// downtime; the clock starts now.
	p := testParams()
	now := at(10, 1, 0)

	rec := SessionRecord{Score: 40}
	got := applyDecay(&rec, p, now)
	assert.InDelta(t, 40, got, 1e-9)
	assert.Equal(t, now, rec.LastDecay)
}

func TestAccumulateClampsAtMax(t *testing.T) {
	p := testParams()
	now := at(10, 1, 0)

	rec := SessionRecord{Score: 75, LastDecay: now}
	got := accumulate(&rec, p, now)
	assert.InDelta(t, p.WakeMax, got, 1e-9)
}

func TestAccumulateDecaysFirst(t *testing.T) {
	p := testParams()
	now := at(10, 1, 0)

	rec := SessionRecord{Score: 20, LastDecay: now}
	got := accumulate(&rec, p, now.Add(time.Minute))
	assert.InDelta(t, 35, got, 1e-9) // 20 - 5 + 20
}

func TestClampScore(t *testing.T) {
	assert.Zero(t, clampScore(-3, 80))
	assert.Equal(t, 80.0, clampScore(95, 80))
	assert.Equal(t, 42.0, clampScore(42, 80))
}
