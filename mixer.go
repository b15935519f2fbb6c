package quartet

import "fmt"

// Mixer consumes a sequencer's per-tick trigger events and renders audio
// from them. SoftwareMixer implements it directly; the hardware-shaped
// backends in backend.go wrap it and stage its output through a FIFO
// before handing the PCM back.
type Mixer interface {
	Push(ev TickEvent) error
	GenerateAudio(buf []int16) int
}

// mixVoice is one of the mixer's four playback heads: a position into an
// instrument's PCM plus the fixed-point increment that position advances
// by for every output sample.
type mixVoice struct {
	inst    *Instrument
	pos     uint32 // mixFracBits-fixed-point frame index into inst.PCM
	stepInc uint32
	active  bool
}

// SoftwareMixer is the portable, pull-based reference mixer: four
// interpolated playback heads summed into a single mono accumulator per
// output sample, clipped to int16. It has no notion of a hardware FIFO;
// GenerateAudio fills exactly the buffer it is given.
type SoftwareMixer struct {
	set    *VoiceSet
	outHz  uint32
	interp Interpolator
	voices [4]mixVoice
	log    Logger

	scratch [4][]int16 // per-voice render buffers reused across GenerateAudio calls
}

// NewSoftwareMixer builds a mixer that renders set's instruments at outHz
// using interp for resampling.
func NewSoftwareMixer(set *VoiceSet, outHz uint32, interp Interpolator, log Logger) *SoftwareMixer {
	if log == nil {
		log = nullLogger{}
	}
	if interp == nil {
		interp = LinearInterpolator{}
	}
	return &SoftwareMixer{set: set, outHz: outHz, interp: interp, log: log}
}

// Push applies one tick's worth of voice triggers: a note (re)starts a
// voice's playback head from the top of its instrument, a slide changes
// pitch without restarting, and a stop silences the voice.
func (m *SoftwareMixer) Push(ev TickEvent) error {
	for v := range ev.Voices {
		t := ev.Voices[v]
		voice := &m.voices[v]
		switch t.Kind {
		case TrigNote:
			if t.Instrument < 0 || t.Instrument >= numInstruments {
				return wrapErr(KindMixer, fmt.Errorf("%w: instrument index %d out of range", ErrMixer, t.Instrument))
			}
			inst := &m.set.Insts[t.Instrument]
			step, err := pitchStep(t.Step, uint32(m.set.Khz), m.outHz, mixFracBits)
			if err != nil {
				return err
			}
			voice.inst = inst
			voice.pos = 0
			voice.stepInc = step
			voice.active = true
		case TrigSlide:
			step, err := pitchStep(t.Step, uint32(m.set.Khz), m.outHz, mixFracBits)
			if err != nil {
				return err
			}
			voice.stepInc = step
		case TrigStop:
			voice.active = false
		case TrigNop:
			// continue whatever is already playing
		}
	}
	return nil
}

// RenderVoices advances all four playback heads by len(out[0]) samples
// each, writing each voice's own unsummed output into out[v]. It is the
// shared rendering primitive: GenerateAudio sums the four heads into a
// mono signal, while a Backend that needs a channel split per voice (the
// STe's A/D-left, B/C-right wiring) calls this directly instead.
func (m *SoftwareMixer) RenderVoices(out [4][]int16) {
	n := len(out[0])
	for v := range m.voices {
		voice := &m.voices[v]
		dst := out[v]
		for i := 0; i < n; i++ {
			if !voice.active || voice.inst == nil {
				dst[i] = 0
				continue
			}
			dst[i] = m.interp.Sample(voice.inst.PCM, voice.pos, mixFracBits)
			voice.pos += voice.stepInc

			lenFixed := voice.inst.Len << mixFracBits
			if voice.pos >= lenFixed {
				if voice.inst.LoopLen > 0 {
					voice.pos -= voice.inst.LoopLen << mixFracBits
				} else {
					voice.active = false
				}
			}
		}
	}
}

// GenerateAudio fills buf with len(buf) mono samples mixed from the four
// voices' current playback heads, advancing each by one tick's worth of
// samples. It returns the number of samples written, always len(buf).
func (m *SoftwareMixer) GenerateAudio(buf []int16) int {
	if cap(m.scratch[0]) < len(buf) {
		for v := range m.scratch {
			m.scratch[v] = make([]int16, len(buf))
		}
	}
	var voiceBufs [4][]int16
	for v := range m.scratch {
		voiceBufs[v] = m.scratch[v][:len(buf)]
	}
	m.RenderVoices(voiceBufs)

	for i := range buf {
		var acc int32
		for v := range voiceBufs {
			acc += int32(voiceBufs[v][i])
		}
		buf[i] = clampI16(acc)
	}
	return len(buf)
}

// MixerID names one of the mixer variants a caller can request, spanning
// the portable software kernel (at each interpolation quality) and the
// hardware-shaped back-ends in backend.go.
type MixerID int

const (
	MixerNearest MixerID = iota
	MixerLinear
	MixerQuadratic
	MixerPaula
	MixerSTeMono
	MixerSTeStereo
	MixerSTeBlend
	MixerFalconDMA
	MixerYM2149
	MixerFloat
)

func (id MixerID) String() string {
	switch id {
	case MixerNearest:
		return "nearest"
	case MixerLinear:
		return "linear"
	case MixerQuadratic:
		return "quadratic"
	case MixerPaula:
		return "paula"
	case MixerSTeMono:
		return "ste-mono"
	case MixerSTeStereo:
		return "ste-stereo"
	case MixerSTeBlend:
		return "ste-blend"
	case MixerFalconDMA:
		return "falcon-dma"
	case MixerYM2149:
		return "ym2149"
	case MixerFloat:
		return "float"
	default:
		return "unknown"
	}
}

// ListMixers returns every MixerID a caller may request of NewMixer, in
// the order ParseMixerID searches them and cmd/qwav lists them in its
// --mixer help text.
func ListMixers() []MixerID {
	return []MixerID{
		MixerNearest, MixerLinear, MixerQuadratic,
		MixerPaula, MixerSTeMono, MixerSTeStereo, MixerSTeBlend,
		MixerFalconDMA, MixerYM2149, MixerFloat,
	}
}

// NewMixer builds the requested mixer variant against set, rendering at
// outHz. Hardware-shaped variants additionally wrap the software kernel
// with the FIFO-feed discipline their real device expects; see backend.go.
func NewMixer(id MixerID, set *VoiceSet, outHz uint32, log Logger) (Mixer, error) {
	switch id {
	case MixerNearest:
		return NewSoftwareMixer(set, outHz, NearestInterpolator{}, log), nil
	case MixerLinear:
		return NewSoftwareMixer(set, outHz, LinearInterpolator{}, log), nil
	case MixerQuadratic:
		return NewSoftwareMixer(set, outHz, QuadraticInterpolator{}, log), nil
	case MixerPaula:
		return newPaulaBackend(set, outHz, log), nil
	case MixerSTeMono:
		return newSTeBackend(set, outHz, steModeMono, log), nil
	case MixerSTeStereo:
		return newSTeBackend(set, outHz, steModeStereo, log), nil
	case MixerSTeBlend:
		return newSTeBackend(set, outHz, steModeBlend, log), nil
	case MixerFalconDMA:
		return newFalconBackend(set, outHz, log), nil
	case MixerYM2149:
		return newYM2149Backend(set, outHz, log), nil
	case MixerFloat:
		return newFloatBackend(set, outHz, LinearInterpolator{}, log), nil
	default:
		return nil, wrapErr(KindArg, fmt.Errorf("%w: unknown mixer id %d", ErrInvalidArg, id))
	}
}

// ParseMixerID resolves a MixerID from its String() name, for command
// line tools that take a --mixer flag.
func ParseMixerID(name string) (MixerID, error) {
	for _, id := range ListMixers() {
		if id.String() == name {
			return id, nil
		}
	}
	return 0, wrapErr(KindArg, fmt.Errorf("%w: unknown mixer %q", ErrInvalidArg, name))
}

// Channels reports how many interleaved output channels a mixer variant
// produces, for a caller sizing its output buffer or WAV header.
func (id MixerID) Channels() int {
	switch id {
	case MixerSTeStereo, MixerSTeBlend, MixerFalconDMA:
		return 2
	default:
		return 1
	}
}
