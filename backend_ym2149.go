package quartet

// newYM2149Backend models the Atari STf's YM-2149 PSG pressed into
// sample playback: a mono channel whose volume register only has 16
// discrete steps, far coarser than either DMA variant and the thinnest
// sounding of the five back-ends.
func newYM2149Backend(set *VoiceSet, outHz uint32, log Logger) *Backend {
	return newBackend(set, outHz, 1, func(s int16) int16 { return quantizeBits(s, 4) }, nil, log)
}
