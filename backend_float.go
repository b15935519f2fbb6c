package quartet

import "math"

// FloatMixer is the generic, not-shaped-like-any-particular-chip backend:
// it renders through the same four playback heads as SoftwareMixer but
// accumulates in float64 before rounding to int16. Since each voice's
// samples are already int16, the sum is the same one SoftwareMixer's
// int32 accumulator produces. It is the backend
// a host with no specific Atari target in mind should reach for.
type FloatMixer struct {
	sw *SoftwareMixer
}

// NewFloatMixer wraps a SoftwareMixer rendering set at outHz with interp.
func NewFloatMixer(set *VoiceSet, outHz uint32, interp Interpolator, log Logger) *FloatMixer {
	return &FloatMixer{sw: NewSoftwareMixer(set, outHz, interp, log)}
}

func (f *FloatMixer) Push(ev TickEvent) error { return f.sw.Push(ev) }

// GenerateAudio renders len(buf) samples, summing each voice's
// contribution in float64 and rounding once at the end rather than
// clamping after every voice addition.
func (f *FloatMixer) GenerateAudio(buf []int16) int {
	var voiceBufs [4][]int16
	for v := range voiceBufs {
		if cap(f.sw.scratch[v]) < len(buf) {
			f.sw.scratch[v] = make([]int16, len(buf))
		}
		voiceBufs[v] = f.sw.scratch[v][:len(buf)]
	}
	f.sw.RenderVoices(voiceBufs)

	for i := range buf {
		var acc float64
		for v := range voiceBufs {
			acc += float64(voiceBufs[v][i])
		}
		buf[i] = clampI16(int32(math.Round(acc)))
	}
	return len(buf)
}

func newFloatBackend(set *VoiceSet, outHz uint32, interp Interpolator, log Logger) *FloatMixer {
	return NewFloatMixer(set, outHz, interp, log)
}
