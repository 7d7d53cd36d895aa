package sleep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateNamesAndMoods(t *testing.T) {
	assert.Equal(t, "AWAKE", StateAwake.String())
	assert.Equal(t, "DROWSY", StateDrowsy.String())
	assert.Equal(t, "SLEEPING", StateSleeping.String())
	assert.Equal(t, "WOKEN_UP", StateWoken.String())
	assert.Equal(t, "woken_up", StateWoken.Mood())
}

func TestParseState(t *testing.T) {
	for input, want := range map[string]State{
		"awake":    StateAwake,
		"DROWSY":   StateDrowsy,
		"Sleeping": StateSleeping,
		"woken_up": StateWoken,
		"woken":    StateWoken,
		" AWAKE ":  StateAwake,
	} {
		got, err := ParseState(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, err := ParseState("hibernating")
	assert.ErrorIs(t, err, ErrUnknownState)
}

func TestMessageKindQualifying(t *testing.T) {
	assert.True(t, KindPrivate.Qualifying())
	assert.True(t, KindMention.Qualifying())
	assert.False(t, KindBroadcast.Qualifying())
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, testParams().Validate())

	p := testParams()
	p.DecayPerMinute = -1
	assert.Error(t, p.Validate())

	p = testParams()
	p.RandomOffset = -1
	assert.Error(t, p.Validate())

	// Threshold above max is allowed; waking just becomes unreachable.
	p = testParams()
	p.WakeThreshold = 100
	assert.NoError(t, p.Validate())
}
