package quartet

import "encoding/binary"

// seqCmdBytes encodes one 12-byte command the way song.go's parser reads
// it back, letting tests build .4v-shaped byte streams without a real
// fixture file on disk.
func seqCmdBytes(op byte, length uint16, step Step, par uint32) []byte {
	b := make([]byte, seqCmdSize)
	b[0] = 0
	b[1] = op
	binary.BigEndian.PutUint16(b[2:4], length)
	binary.BigEndian.PutUint32(b[4:8], uint32(step))
	binary.BigEndian.PutUint32(b[8:12], par)
	return b
}

// buildSongBytes assembles a full .4v file: a valid 16-byte header
// followed by the concatenation of every voice's pre-encoded command
// stream (each voice's own byte slice should already end in its own F).
func buildSongBytes(khz, bar, tempo, sigm, sigd uint16, voices ...[]byte) []byte {
	hd := make([]byte, 16)
	binary.BigEndian.PutUint16(hd[0:2], khz)
	binary.BigEndian.PutUint16(hd[2:4], bar)
	binary.BigEndian.PutUint16(hd[4:6], tempo)
	hd[6] = byte(sigm)
	hd[7] = byte(sigd)

	out := append([]byte{}, hd...)
	for _, v := range voices {
		out = append(out, v...)
	}
	return out
}

// oneNoteVoice is a minimal voice stream: select instrument 0, play one
// note for length ticks at step, then end.
func oneNoteVoice(length uint16, step Step) []byte {
	var b []byte
	b = append(b, seqCmdBytes(OpVoiceChange, 0, 0, 0)...)
	b = append(b, seqCmdBytes(OpPlayNote, length, step, 0)...)
	b = append(b, seqCmdBytes(OpEndOfVoice, 0, 0, 0)...)
	return b
}

// silentVoice is an empty voice: just the closing F, equivalent to
// supplying no commands for that voice slot at all.
func silentVoice() []byte {
	return seqCmdBytes(OpEndOfVoice, 0, 0, 0)
}

// instFixture describes one instrument's raw PCM and loop length (0 for
// a one-shot) for buildVoiceSetBytes.
type instFixture struct {
	PCM     []byte
	LoopLen uint32
}

// buildVoiceSetBytes assembles a .set file for the given instruments using
// the real 222-byte header layout: a sampling rate byte, an instrument
// count byte (stored as count+1), 20 seven-byte names (left blank here),
// and 20 big-endian offset-table entries. Each instrument's body bytes are
// an 8-byte big-endian lpl/len prefix (lpl 0xFFFFFFFF meaning no loop)
// followed by its raw PCM, matching what ParseVoiceSet decodes.
func buildVoiceSetBytes(khz byte, insts map[int]instFixture) []byte {
	const offsetTable = 2 + numInstruments*7

	maxIdx := -1
	for i := range insts {
		if i > maxIdx {
			maxIdx = i
		}
	}
	nbi := maxIdx + 1
	if nbi < 1 {
		nbi = 1
	}

	hd := make([]byte, headerSize)
	hd[0] = khz
	hd[1] = byte(nbi + 1)

	var body []byte
	for i := 0; i < numInstruments; i++ {
		in, ok := insts[i]
		if !ok {
			continue
		}
		var lplWord uint32
		if in.LoopLen == 0 {
			lplWord = 0xFFFFFFFF
		} else {
			lplWord = in.LoopLen << 16
		}
		lenWord := uint32(len(in.PCM)) << 16

		prefixStart := len(body)
		prefix := make([]byte, 8)
		binary.BigEndian.PutUint32(prefix[0:4], lplWord)
		binary.BigEndian.PutUint32(prefix[4:8], lenWord)
		body = append(body, prefix...)
		body = append(body, in.PCM...)

		rawOff := uint32(prefixStart + headerSize)
		off := offsetTable + i*4
		binary.BigEndian.PutUint32(hd[off:off+4], rawOff)
	}

	return append(hd, body...)
}
