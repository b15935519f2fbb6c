package quartet

import (
	"encoding/binary"
	"fmt"
)

// Sequence command opcodes, spec.md §3. These are the literal ASCII bytes
// stored in a .4v command's two-byte cmd field.
const (
	OpPlayNote      byte = 'P'
	OpSlideToNote   byte = 'S'
	OpRest          byte = 'R'
	OpVoiceChange   byte = 'V'
	OpSetLoopPoint  byte = 'l'
	OpLoopToPoint   byte = 'L'
	OpEndOfVoice    byte = 'F'
	seqCmdSize           = 12
	maxLoopDepth         = 67
	numInstruments       = 20
)

// SongMaxSize bounds how large a .4v file (header included) may be before it is
// rejected outright, independent of any truncation/padding performed
// while parsing.
const SongMaxSize = 1 << 18

// SeqCmd is one fixed 12-byte sequence command: {cmd:u16, len:u16,
// step:u32, par:u32}. Only the low byte of cmd is meaningful; the full
// 16 bits of len, and the full 32 bits of step/par, are.
type SeqCmd struct {
	Op   byte
	Len  uint16
	Step Step
	Par  uint32
}

// VoiceSeq is one voice's decoded command stream plus the bracketing
// indices (Sq0, SqN) of its first and last sound-producing (P/R/S)
// command, used by the loop-to-point whole-sequence suppression rule.
type VoiceSeq struct {
	Cmds []SeqCmd
	Sq0  int // index of first P/R/S command, -1 if none
	SqN  int // index of last P/R/S command, -1 if none
}

// Song is a fully parsed and validated .4v score: a fixed header plus
// four independent per-voice command streams.
type Song struct {
	Khz      uint8
	Bar      uint8
	Tempo    uint8
	SigNum   uint8
	SigDenom uint8

	StepMin, StepMax Step
	InstUsed         uint32 // bitmask of instrument indices referenced by P, per the running 'V' state while parsing

	Voices [4]VoiceSeq
}

// nullSeq is the synthetic stub substituted for a voice that never plays
// a note: a one-tick rest followed immediately by end-of-voice, so the
// sequencer advances and reaches the F on the second tick rather than
// spinning forever.
var nullSeq = []SeqCmd{
	{Op: OpRest, Len: 1},
	{Op: OpEndOfVoice},
}

// ParseSong validates a .4v file's 16-byte header and decodes its command
// stream into four per-voice sequences, patching in the synthetic stub
// for any voice that has no notes or is simply absent.
func ParseSong(data []byte) (*Song, error) {
	if len(data) < 16 {
		return nil, wrapErr(KindInput, fmt.Errorf("%w: song header truncated, got %d bytes", ErrInput, len(data)))
	}
	if len(data) > SongMaxSize {
		return nil, wrapErr(KindSong, fmt.Errorf("%w: song too large (%d > %d)", ErrInvalidSong, len(data), SongMaxSize))
	}

	hd := data[:16]
	song := &Song{
		Khz:      hd[0],
		Bar:      hd[2],
		Tempo:    hd[4],
		SigNum:   hd[6],
		SigDenom: hd[7],
	}
	// The header is nominally {khz:u16be, bar:u16be, tempo:u16be,
	// sigm:u8, sigd:u8}; only the low byte of khz/bar/tempo carries a
	// value in any file this format has ever been seen with, but we
	// read the full big-endian u16 for the range checks below.
	khz := binary.BigEndian.Uint16(hd[0:2])
	bar := binary.BigEndian.Uint16(hd[2:4])
	tempo := binary.BigEndian.Uint16(hd[4:6])
	sigm, sigd := hd[6], hd[7]

	if err := validateSongHeader(khz, bar, tempo, sigm, sigd); err != nil {
		return nil, err
	}
	song.Khz, song.Bar, song.Tempo = uint8(khz), uint8(bar), uint8(tempo)

	body := data[16:]
	n := (len(body) / seqCmdSize) * seqCmdSize
	trailing := len(body) - n
	body = body[:n]

	cmds := make([]SeqCmd, n/seqCmdSize)
	for i := range cmds {
		b := body[i*seqCmdSize : (i+1)*seqCmdSize]
		cmds[i] = SeqCmd{
			Op:   b[1],
			Len:  binary.BigEndian.Uint16(b[2:4]),
			Step: Step(binary.BigEndian.Uint32(b[4:8])),
			Par:  binary.BigEndian.Uint32(b[8:12]),
		}
	}

	k := 0
	start := 0
	hasNote := false
	curInst := 0
	sq0, sqN := -1, -1

	closeVoice := func(end int) {
		if k >= 4 {
			return
		}
		if hasNote {
			song.Voices[k] = VoiceSeq{Cmds: cmds[start : end+1], Sq0: sq0 - start, SqN: sqN - start}
		} else {
			song.Voices[k] = VoiceSeq{Cmds: nullSeq, Sq0: -1, SqN: -1}
		}
		k++
		start = end + 1
		hasNote = false
		sq0, sqN = -1, -1
	}

	for i := 0; i < len(cmds) && k < 4; i++ {
		c := cmds[i]
		switch c.Op {
		case OpEndOfVoice:
			closeVoice(i)
		case OpPlayNote:
			song.InstUsed |= 1 << uint(curInst)
			fallthrough
		case OpSlideToNote:
			if c.Step < StepMin || c.Step > StepMax {
				return nil, wrapErr(KindSong, fmt.Errorf("%w: step %#x out of range [%#x,%#x]", ErrInvalidSong, c.Step, StepMin, StepMax))
			}
			if song.StepMax == 0 {
				song.StepMin, song.StepMax = c.Step, c.Step
			} else if c.Step > song.StepMax {
				song.StepMax = c.Step
			} else if c.Step < song.StepMin {
				song.StepMin = c.Step
			}
			hasNote = true
			if sq0 == -1 {
				sq0 = i
			}
			sqN = i
		case OpRest:
			hasNote = true
			if sq0 == -1 {
				sq0 = i
			}
			sqN = i
		case OpVoiceChange:
			ins := c.Par >> 2
			if c.Par&^(uint32(31)<<2) != 0 || ins >= numInstruments {
				return nil, wrapErr(KindSong, fmt.Errorf("%w: bad voice-change param %#x", ErrInvalidSong, c.Par))
			}
			curInst = int(ins)
		case OpSetLoopPoint, OpLoopToPoint:
			// accepted without further static validation; depth/content
			// checked at play time.
		default:
			return nil, wrapErr(KindSong, fmt.Errorf("%w: unknown opcode %q at command %d", ErrInvalidSong, c.Op, i))
		}
	}

	// Close the in-flight voice for any trailing commands past the
	// last F, or fill in missing voices entirely.
	if k < 4 && start <= len(cmds) {
		if hasNote {
			// Truncated: no closing F was found. Splice one on rather
			// than reading past the decoded command array.
			closed := append(append([]SeqCmd{}, cmds[start:]...), SeqCmd{Op: OpEndOfVoice})
			song.Voices[k] = VoiceSeq{Cmds: closed, Sq0: sq0 - start, SqN: sqN - start}
			k++
		}
	}
	for ; k < 4; k++ {
		song.Voices[k] = VoiceSeq{Cmds: nullSeq, Sq0: -1, SqN: -1}
	}

	_ = trailing // trailing bytes past the final command are a warning, not an error; see warnTrailing below

	return song, nil
}

// warnTrailing reports leftover bytes after the last closing F through the
// supplied logger, matching zingzong's "garbage data after voice
// sequences" diagnostic. ParseSong itself stays logger-free so parsing
// remains a pure function; callers that care about the warning call this
// explicitly.
func warnTrailing(log Logger, totalBytes, consumedCmds int) {
	consumed := 16 + consumedCmds*seqCmdSize
	if rem := totalBytes - consumed; rem > 0 {
		log.Warnf("garbage data after voice sequences -- %d bytes", rem)
	}
}

func validateSongHeader(khz, bar, tempo uint16, sigm, sigd uint8) error {
	if khz < 4 || khz > 20 {
		return wrapErr(KindSong, fmt.Errorf("%w: sampling rate %d kHz out of range [4,20]", ErrInvalidSong, khz))
	}
	if bar < 4 || bar > 48 || bar%4 != 0 {
		return wrapErr(KindSong, fmt.Errorf("%w: bar measure %d invalid (want multiple of 4 in [4,48])", ErrInvalidSong, bar))
	}
	if tempo < 1 || tempo > 64 {
		return wrapErr(KindSong, fmt.Errorf("%w: tempo %d out of range [1,64]", ErrInvalidSong, tempo))
	}
	if sigm < 1 || sigm > sigd || sigd > 4 {
		return wrapErr(KindSong, fmt.Errorf("%w: time signature %d/%d invalid", ErrInvalidSong, sigm, sigd))
	}
	return nil
}
