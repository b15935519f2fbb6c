package quartet

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/fourvoice/quartet/internal/arena"
)

// VoiceSetMaxSize and instUnrollPad are the same over-allocation constants
// the reference mixer builds its working PCM image with: enough trailing
// bytes past a looping instrument's tail that the interpolators can always
// read one extra input sample ahead of the wrap point without branching on
// every sample.
const (
	VoiceSetMaxSize = 1 << 21
	instUnrollPad   = 1024
)

// Instrument is one unrolled, ready-to-mix sample: PCM holds the
// instrument's own bytes followed by instUnrollPad bytes of either a
// repeated loop head (for a looping instrument) or a held last sample
// (for a one-shot), so the mixer and every interpolator variant can
// always read PCM[i+2] near the end without a bounds check.
type Instrument struct {
	Len     uint32 // sample length in frames, excluding the unroll pad
	LoopLen uint32 // replay length in frames, 0 if the instrument does not loop
	PCM     []byte // signed 8-bit mono samples, Len+instUnrollPad long
}

// LoopStart is the frame index the instrument wraps back to once it runs
// past Len, i.e. Len-LoopLen.
func (in *Instrument) LoopStart() uint32 {
	if in.LoopLen == 0 {
		return in.Len
	}
	return in.Len - in.LoopLen
}

// VoiceSet is a fully parsed, unrolled .set instrument bank.
type VoiceSet struct {
	Khz   uint8
	Used  uint32 // bitmask of instrument slots actually present in the file
	Insts [numInstruments]Instrument
}

type instDesc struct {
	idx    int
	addr   int // byte offset of this instrument's PCM within the body (data[headerSize:])
	length uint32
	replen uint32
}

// headerSize is the fixed .set header: a 1-byte sampling rate, a 1-byte
// instrument count (stored as count+1), 20 seven-byte instrument names,
// and 20 big-endian 32-bit instrument offsets.
const headerSize = 1 + 1 + numInstruments*7 + numInstruments*4

// ParseVoiceSet validates a .set file's 222-byte header and instrument
// offset table, then unrolls each referenced instrument's PCM out of the
// trailing sample data. instUsed is the bitmask of instrument slots the
// companion song actually plays (Song.InstUsed); every bit set there must
// have a non-tainted descriptor here, mirroring zingzong's vset_init
// iused/imask cross-check that catches a song and voice set that do not
// belong together.
//
// Each instrument's offset table entry is a file-absolute byte offset
// rawOff; o = rawOff-headerSize+8 is the body-relative offset of the
// instrument's first PCM byte, o-4 is its length prefix word, and o-8 is
// its loop-length prefix word (both prefix words are big-endian 32-bit
// with the count in the high 16 bits and the low 16 bits reserved as
// zero); see zz_load.c's vset_parse. An instrument whose geometry fails
// validation is tainted (treated as absent) rather than rejected
// outright, matching the original loader.
func ParseVoiceSet(data []byte, instUsed uint32) (*VoiceSet, error) {
	if len(data) < headerSize {
		return nil, wrapErr(KindInput, fmt.Errorf("%w: voice set header truncated, got %d bytes", ErrInput, len(data)))
	}
	if len(data) > VoiceSetMaxSize {
		return nil, wrapErr(KindVoiceSet, fmt.Errorf("%w: voice set too large (%d > %d)", ErrInvalidSet, len(data), VoiceSetMaxSize))
	}

	khz := data[0]
	if khz < 4 || khz > 20 {
		return nil, wrapErr(KindVoiceSet, fmt.Errorf("%w: sampling rate %d kHz out of range [4,20]", ErrInvalidSet, khz))
	}
	nbi := int(data[1]) - 1
	if nbi < 1 || nbi > numInstruments {
		return nil, wrapErr(KindVoiceSet, fmt.Errorf("%w: instrument count %d out of range [1,%d]", ErrInvalidSet, nbi, numInstruments))
	}

	vs := &VoiceSet{Khz: khz}
	body := data[headerSize:]
	const offsetTable = 2 + numInstruments*7 // hd[142..] in the original layout

	var descs []instDesc
	for i := 0; i < nbi; i++ {
		rawOff := binary.BigEndian.Uint32(data[offsetTable+4*i : offsetTable+4*i+4])
		// o is the byte offset within body where this instrument's PCM
		// begins; body[o-4:o] and body[o-8:o-4] are its length and
		// loop-length prefix words.
		o := int(rawOff) - headerSize + 8

		if o < 8 || o > len(body) {
			continue // offset table entry points outside the file; taint and skip
		}
		lplWord := binary.BigEndian.Uint32(body[o-8 : o-4])
		lenWord := binary.BigEndian.Uint32(body[o-4 : o])
		if lplWord == 0xFFFFFFFF {
			lplWord = 0
		}
		if lenWord&0xFFFF != 0 || lplWord&0xFFFF != 0 {
			continue // low word must be 0, per the format's 16.16 count encoding
		}
		length := lenWord >> 16
		replen := lplWord >> 16
		if length == 0 || replen > length {
			continue
		}
		if o+int(length) > len(body) {
			continue
		}

		vs.Used |= 1 << uint(i)
		descs = append(descs, instDesc{idx: i, addr: o, length: length, replen: replen})
	}

	if instUsed&^vs.Used != 0 {
		return nil, wrapErr(KindVoiceSet, fmt.Errorf("%w: song references instruments %#x not present in voice set (has %#x)", ErrInvalidSet, instUsed&^vs.Used, vs.Used))
	}

	ar := arena.New(body, 0)

	// Process instruments in descending address order, as prepare_vset's
	// cmpadr ordering does. Each instrument is copied at exactly its own
	// declared length into a fresh buffer, so its extent is not bounded
	// by a neighbor's address and the order does not change the result.
	sorted := append([]instDesc(nil), descs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].addr > sorted[j].addr })

	for _, d := range sorted {
		src, err := ar.Slice(d.addr, int(d.length))
		if err != nil {
			return nil, wrapErr(KindVoiceSet, fmt.Errorf("%w: instrument %d: %v", ErrInvalidSet, d.idx, err))
		}
		pcm := make([]byte, d.length+instUnrollPad)
		copy(pcm, src)
		fillUnrollPad(pcm, d.length, d.replen)
		vs.Insts[d.idx] = Instrument{Len: d.length, LoopLen: d.replen, PCM: pcm}
	}

	return vs, nil
}

// fillUnrollPad extends pcm[length:] with instUnrollPad bytes of lookahead
// data: the start of the loop region repeated for a looping instrument, or
// the final sample held flat for a one-shot, matching how the reference
// mixer avoids a branch on every output sample near an instrument's tail.
func fillUnrollPad(pcm []byte, length, replen uint32) {
	pad := pcm[length:]
	if replen == 0 {
		var last byte
		if length > 0 {
			last = pcm[length-1]
		}
		for i := range pad {
			pad[i] = last
		}
		return
	}
	start := length - replen
	for i := range pad {
		pad[i] = pcm[start+uint32(i)%replen]
	}
}
