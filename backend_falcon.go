package quartet

// newFalconBackend models the Atari Falcon's 16-bit stereo DMA sound
// matrix, the highest-fidelity of the hardware targets: no quantization
// below the mixer's own int16 output, spread across both channels so it
// can drive a standard stereo audio device directly.
func newFalconBackend(set *VoiceSet, outHz uint32, log Logger) *Backend {
	return newBackend(set, outHz, 2, func(s int16) int16 { return s }, nil, log)
}
