package quartet

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildBundleBytes(t *testing.T, song, set []byte, comment string) []byte {
	t.Helper()
	hd := make([]byte, 16)
	copy(hd[:4], bundleMagic[:])
	binary.BigEndian.PutUint32(hd[4:8], uint32(len(song)))
	binary.BigEndian.PutUint32(hd[8:12], uint32(len(set)))
	binary.BigEndian.PutUint32(hd[12:16], uint32(len(comment)))

	out := append([]byte{}, hd...)
	out = append(out, song...)
	out = append(out, set...)
	out = append(out, comment...)
	return out
}

func TestParseBundleRoundTrip(t *testing.T) {
	songBytes := buildSongBytes(8, 16, 6, 4, 4, oneNoteVoice(4, StepMin), silentVoice(), silentVoice(), silentVoice())
	setBytes := buildVoiceSetBytes(8, map[int]instFixture{0: {PCM: []byte{1, 2, 3, 4}}})

	data := buildBundleBytes(t, songBytes, setBytes, "written by a friendly tracker")
	bundle, err := ParseBundle(data)
	require.NoError(t, err)

	assert.Equal(t, "written by a friendly tracker", bundle.Comment)
	assert.Equal(t, uint8(8), bundle.Song.Khz)
	assert.Equal(t, uint32(1), bundle.Set.Used)
}

func TestParseBundleRejectsBadMagic(t *testing.T) {
	data := make([]byte, 16)
	_, err := ParseBundle(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInput)
}

func TestParseBundleRejectsTruncatedBody(t *testing.T) {
	hd := make([]byte, 16)
	copy(hd[:4], bundleMagic[:])
	binary.BigEndian.PutUint32(hd[4:8], 1000)
	_, err := ParseBundle(hd)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInput)
}

func TestParseBundlePropagatesSongSetMismatch(t *testing.T) {
	var v0 []byte
	v0 = append(v0, seqCmdBytes(OpVoiceChange, 0, 0, 5<<2)...)
	v0 = append(v0, seqCmdBytes(OpPlayNote, 4, StepMin, 0)...)
	v0 = append(v0, seqCmdBytes(OpEndOfVoice, 0, 0, 0)...)
	songBytes := buildSongBytes(8, 16, 6, 4, 4, v0, silentVoice(), silentVoice(), silentVoice())
	setBytes := buildVoiceSetBytes(8, map[int]instFixture{0: {PCM: []byte{1, 2, 3, 4}}})

	data := buildBundleBytes(t, songBytes, setBytes, "")
	_, err := ParseBundle(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSet)
}
