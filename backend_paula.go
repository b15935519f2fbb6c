package quartet

// newPaulaBackend models a single 8-bit mono DAC channel of the kind the
// earliest Quartet players targeted before the ST's own DMA sound: full
// linear resampling quality in software, truncated to 8-bit resolution
// on the way out since that is all the DAC itself can represent.
func newPaulaBackend(set *VoiceSet, outHz uint32, log Logger) *Backend {
	return newBackend(set, outHz, 1, func(s int16) int16 { return quantizeBits(s, 8) }, nil, log)
}
