package quartet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftwareMixerProducesSilenceBeforeAnyTrigger(t *testing.T) {
	vs := basicVoiceSet(t)
	m := NewSoftwareMixer(vs, 8000, LinearInterpolator{}, nil)

	buf := make([]int16, 16)
	n := m.GenerateAudio(buf)
	assert.Equal(t, 16, n)
	for _, s := range buf {
		assert.Equal(t, int16(0), s)
	}
}

func TestSoftwareMixerPlaysNoteAfterTrigger(t *testing.T) {
	vs := basicVoiceSet(t)
	m := NewSoftwareMixer(vs, 8000, NearestInterpolator{}, nil)

	err := m.Push(TickEvent{Voices: [4]VoiceTrig{
		{Kind: TrigNote, Instrument: 0, Step: 1 << StepFracBits},
	}})
	require.NoError(t, err)

	buf := make([]int16, 4)
	m.GenerateAudio(buf)
	assert.NotEqual(t, int16(0), buf[0], "first sample should reflect the instrument's PCM")
}

func TestSoftwareMixerStopSilencesVoice(t *testing.T) {
	vs := basicVoiceSet(t)
	m := NewSoftwareMixer(vs, 8000, NearestInterpolator{}, nil)

	require.NoError(t, m.Push(TickEvent{Voices: [4]VoiceTrig{{Kind: TrigNote, Instrument: 0, Step: 1 << StepFracBits}}}))
	require.NoError(t, m.Push(TickEvent{Voices: [4]VoiceTrig{{Kind: TrigStop}}}))

	buf := make([]int16, 4)
	m.GenerateAudio(buf)
	for _, s := range buf {
		assert.Equal(t, int16(0), s)
	}
}

func TestSoftwareMixerRejectsOutOfRangeInstrument(t *testing.T) {
	vs := basicVoiceSet(t)
	m := NewSoftwareMixer(vs, 8000, NearestInterpolator{}, nil)
	err := m.Push(TickEvent{Voices: [4]VoiceTrig{{Kind: TrigNote, Instrument: 99}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMixer)
}

func TestListMixersIncludesEveryID(t *testing.T) {
	ids := ListMixers()
	assert.Len(t, ids, 10)
	for _, id := range ids {
		assert.NotEqual(t, "unknown", id.String())
	}
}

func TestNewMixerBuildsEachVariant(t *testing.T) {
	vs := basicVoiceSet(t)
	for _, id := range ListMixers() {
		m, err := NewMixer(id, vs, 44100, nil)
		require.NoError(t, err, id)
		require.NotNil(t, m)
	}
}

func TestHardwareBackendStereoPansVoicesAcrossChannels(t *testing.T) {
	vs := basicVoiceSet(t)
	m, err := NewMixer(MixerSTeStereo, vs, 8000, nil)
	require.NoError(t, err)
	require.NoError(t, m.Push(TickEvent{Voices: [4]VoiceTrig{{Kind: TrigNote, Instrument: 0, Step: 1 << StepFracBits}}}))

	buf := make([]int16, 8) // 4 stereo frames
	m.GenerateAudio(buf)
	// voice 0 is panned hard left in STe stereo mode.
	assert.NotEqual(t, int16(0), buf[0])
	assert.Equal(t, int16(0), buf[1])
}
