package quartet

// steMode selects how the Atari STe's two DMA channels are fed from the
// four software voices.
type steMode int

const (
	steModeMono steMode = iota
	steModeStereo
	steModeBlend
)

// newSTeBackend models the STe's 8-bit stereo DMA sound. Voices A and D
// are hardwired to the left channel and B and C to the right on real
// hardware; mono mode sums all four into a single channel, stereo keeps
// the A/D-B/C split, and blend mode sums all four voices at full level
// into both channels. There is no partial-leakage setting: blend output
// is the same on the left and right channels.
func newSTeBackend(set *VoiceSet, outHz uint32, mode steMode, log Logger) *Backend {
	quantize := func(s int16) int16 { return quantizeBits(s, 8) }

	switch mode {
	case steModeMono:
		return newBackend(set, outHz, 1, quantize, nil, log)
	case steModeStereo:
		pan := func(voice int) (left, right bool) {
			if voice == 0 || voice == 3 {
				return true, false
			}
			return false, true
		}
		return newBackend(set, outHz, 2, quantize, pan, log)
	default: // steModeBlend
		pan := func(voice int) (left, right bool) { return true, true }
		return newBackend(set, outHz, 2, quantize, pan, log)
	}
}
