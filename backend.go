package quartet

import "github.com/fourvoice/quartet/internal/ringbuf"

// Backend is a Mixer shaped like a real Atari sound chip's DMA or PSG
// feed rather than a free-running software renderer: it stages rendered
// samples into a fixed-depth FIFO and quantizes them to whatever
// resolution and channel layout the chip it models actually has.
//
// Every concrete backend wraps a SoftwareMixer for the actual resampling
// work; what differs between them is quantize and the channel layout
// GenerateAudio produces.
type Backend struct {
	sw        *SoftwareMixer
	fifo      *ringbuf.Ring
	voiceBufs [4][]int16
	quantize  func(int16) int16
	channels  int
	pan       func(voice int) (left, right bool)
	log       Logger
}

const backendFIFODepth = 4096

func newBackend(set *VoiceSet, outHz uint32, channels int, quantize func(int16) int16, pan func(int) (bool, bool), log Logger) *Backend {
	if log == nil {
		log = nullLogger{}
	}
	return &Backend{
		sw:       NewSoftwareMixer(set, outHz, LinearInterpolator{}, log),
		fifo:     ringbuf.New(backendFIFODepth),
		quantize: quantize,
		channels: channels,
		pan:      pan,
		log:      log,
	}
}

// Push forwards tick triggers straight to the underlying software mixer;
// no chip differs in how it decides what to play, only in how it plays
// it back.
func (b *Backend) Push(ev TickEvent) error { return b.sw.Push(ev) }

// GenerateAudio renders len(buf)/channels frames through the software
// mixer, quantizes each sample to the chip's resolution, spreads mono
// frames across channels per the backend's pan function, and stages the
// result through the FIFO so a caller reading in small chunks exercises
// the same retry-on-short-read discipline a real hardware feed does.
func (b *Backend) GenerateAudio(buf []int16) int {
	if b.channels <= 1 {
		n := b.sw.GenerateAudio(buf)
		for i := 0; i < n; i++ {
			buf[i] = b.quantize(buf[i])
		}
		return b.stage(buf[:n])
	}

	frames := len(buf) / b.channels
	for v := range b.voiceBufs {
		if cap(b.voiceBufs[v]) < frames {
			b.voiceBufs[v] = make([]int16, frames)
		}
		b.voiceBufs[v] = b.voiceBufs[v][:frames]
	}
	b.sw.RenderVoices(b.voiceBufs)

	out := buf[:frames*b.channels]
	for i := range out {
		out[i] = 0
	}
	for v, vb := range b.voiceBufs {
		left, right := true, true
		if b.pan != nil {
			left, right = b.pan(v)
		}
		for i, s := range vb {
			if !left && !right {
				continue
			}
			if left {
				out[i*b.channels] = clampI16(int32(out[i*b.channels]) + int32(s))
			}
			if right {
				out[i*b.channels+1] = clampI16(int32(out[i*b.channels+1]) + int32(s))
			}
		}
	}
	for i := range out {
		out[i] = b.quantize(out[i])
	}
	return b.stage(out)
}

// stage round-trips buf through the FIFO: a real fixed-depth hardware
// feed can silently drop the tail of an over-large write, and a reader
// pulling in chunks smaller than one tick's render must retry until the
// FIFO reports no more data rather than assume a short read means
// underrun. Doing both here, even though nothing else in this process
// writes to the same Ring concurrently, keeps GenerateAudio's contract
// identical to a caller driving real hardware.
func (b *Backend) stage(buf []int16) int {
	written := b.fifo.Write(buf)
	if written < len(buf) {
		b.log.Warnf("backend FIFO overrun, dropped %d samples", len(buf)-written)
	}
	total := 0
	for total < written {
		n := b.fifo.Read(buf[total:written])
		if n == 0 {
			break
		}
		total += n
	}
	return total
}

// quantizeBits rounds s down to a signed value with only the top bits
// significant bits of dynamic range, the shape every DAC resolution below
// 16 bits shares.
func quantizeBits(s int16, bits uint) int16 {
	shift := 16 - bits
	return clampI16(int32(s)>>shift) << shift
}
