package quartet

import (
	"encoding/binary"
	"fmt"
)

// bundleMagic is the 4-byte tag a .4q container opens with.
var bundleMagic = [4]byte{'Q', '4', 'B', '1'}

// Bundle is a parsed .4q container: a song, its voice set, and an optional
// free-text comment, the single-file distribution format for a Quartet
// tune.
type Bundle struct {
	Song    *Song
	Set     *VoiceSet
	Comment string
}

// ParseBundle decodes a .4q file: a fixed 16-byte header naming the
// embedded song and voice-set lengths, followed by the song bytes, the
// voice-set bytes, and an optional trailing comment string.
//
// Header layout (big-endian):
//
//	magic   [4]byte  "Q4B1"
//	songLen uint32
//	setLen  uint32
//	comLen  uint32
func ParseBundle(data []byte) (*Bundle, error) {
	const headerSize = 16
	if len(data) < headerSize {
		return nil, wrapErr(KindInput, fmt.Errorf("%w: bundle header truncated, got %d bytes", ErrInput, len(data)))
	}
	var magic [4]byte
	copy(magic[:], data[:4])
	if magic != bundleMagic {
		return nil, wrapErr(KindInput, fmt.Errorf("%w: not a bundle (bad magic %q)", ErrInput, magic))
	}

	songLen := binary.BigEndian.Uint32(data[4:8])
	setLen := binary.BigEndian.Uint32(data[8:12])
	comLen := binary.BigEndian.Uint32(data[12:16])

	body := data[headerSize:]
	need := uint64(songLen) + uint64(setLen) + uint64(comLen)
	if uint64(len(body)) < need {
		return nil, wrapErr(KindInput, fmt.Errorf("%w: bundle body truncated, need %d bytes, have %d", ErrInput, need, len(body)))
	}

	songBytes := body[:songLen]
	body = body[songLen:]
	setBytes := body[:setLen]
	body = body[setLen:]
	comBytes := body[:comLen]

	song, err := ParseSong(songBytes)
	if err != nil {
		return nil, err
	}
	set, err := ParseVoiceSet(setBytes, song.InstUsed)
	if err != nil {
		return nil, err
	}

	return &Bundle{Song: song, Set: set, Comment: string(comBytes)}, nil
}
