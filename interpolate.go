package quartet

// Interpolator reconstructs an output sample from an instrument's 8-bit
// PCM at a fixed-point read position. pos is fracBits.32-fracBits fixed
// point; the integer part indexes pcm, the fractional part selects where
// between samples to read. Every instrument carries instUnrollPad bytes
// of lookahead past its nominal length, so Sample never needs to
// bounds-check pos+1 or pos+2 itself.
type Interpolator interface {
	Name() string
	Sample(pcm []byte, pos uint32, fracBits uint) int16
}

// pcm8 widens a signed 8-bit sample into mix_none.c/mix_lerp.c's 14-bit
// headroom: shifted by 6 rather than 8, so four summed voices stay inside
// int16 range without per-voice clamping.
func pcm8(pcm []byte, i uint32) int32 { return int32(int8(pcm[i])) << 6 }

// NearestInterpolator reads the single closest input sample, the cheapest
// and lowest-quality of the three, used by the reference ZZ_LQ mixer
// variant.
type NearestInterpolator struct{}

func (NearestInterpolator) Name() string { return "nearest" }

func (NearestInterpolator) Sample(pcm []byte, pos uint32, fracBits uint) int16 {
	idx := pos >> fracBits
	return int16(pcm8(pcm, idx))
}

// LinearInterpolator blends the two samples bracketing pos, the ZZ_MQ
// variant.
type LinearInterpolator struct{}

func (LinearInterpolator) Name() string { return "linear" }

func (LinearInterpolator) Sample(pcm []byte, pos uint32, fracBits uint) int16 {
	idx := pos >> fracBits
	frac := int32(pos & ((1 << fracBits) - 1))
	s0 := pcm8(pcm, idx)
	s1 := pcm8(pcm, idx+1)
	out := s0 + (((s1 - s0) * frac) >> fracBits)
	return clampI16(out)
}

// QuadraticInterpolator fits a 3-point Lagrange parabola through the
// sample before, at, and after pos, the ZZ_HQ variant. It costs roughly
// twice what linear does for a noticeably cleaner top octave.
type QuadraticInterpolator struct{}

func (QuadraticInterpolator) Name() string { return "quadratic" }

func (QuadraticInterpolator) Sample(pcm []byte, pos uint32, fracBits uint) int16 {
	idx := pos >> fracBits
	frac := int64(pos & ((1 << fracBits) - 1))
	scale := int64(1) << fracBits

	var ym1 int32
	if idx > 0 {
		ym1 = pcm8(pcm, idx-1)
	} else {
		ym1 = pcm8(pcm, idx)
	}
	y0 := pcm8(pcm, idx)
	y1 := pcm8(pcm, idx+1)

	c0 := int64(y0)
	c1 := int64(y1-ym1) / 2
	c2 := int64(y1+ym1)/2 - int64(y0)

	t := frac * scale / scale // keep t in [0,scale)
	out := (c2*t/scale+c1)*t/scale + c0
	return clampI16(int32(out))
}
