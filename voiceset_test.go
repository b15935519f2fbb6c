package quartet

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVoiceSetUnrollsLoopingInstrument(t *testing.T) {
	pcm := []byte{10, 20, 30, 40, 50, 60}
	data := buildVoiceSetBytes(8, map[int]instFixture{
		0: {PCM: pcm, LoopLen: 2},
	})

	vs, err := ParseVoiceSet(data, 1<<0)
	require.NoError(t, err)

	in := &vs.Insts[0]
	assert.Equal(t, uint32(len(pcm)), in.Len)
	assert.Equal(t, uint32(2), in.LoopLen)
	assert.Equal(t, uint32(4), in.LoopStart())

	// the pad should repeat the loop region (pcm[4], pcm[5], pcm[4], ...)
	assert.Equal(t, pcm[4], in.PCM[len(pcm)])
	assert.Equal(t, pcm[5], in.PCM[len(pcm)+1])
	assert.Equal(t, pcm[4], in.PCM[len(pcm)+2])
}

func TestParseVoiceSetPadsOneShotWithHeldTail(t *testing.T) {
	pcm := []byte{1, 2, 3, 42}
	data := buildVoiceSetBytes(8, map[int]instFixture{
		0: {PCM: pcm, LoopLen: 0},
	})

	vs, err := ParseVoiceSet(data, 1<<0)
	require.NoError(t, err)

	in := &vs.Insts[0]
	for _, b := range in.PCM[len(pcm):] {
		assert.Equal(t, byte(42), b)
	}
}

func TestParseVoiceSetRejectsMissingInstrument(t *testing.T) {
	data := buildVoiceSetBytes(8, map[int]instFixture{
		0: {PCM: []byte{1, 2, 3}},
	})

	_, err := ParseVoiceSet(data, 1<<0|1<<5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSet))
}

func TestParseVoiceSetRejectsLoopLongerThanSample(t *testing.T) {
	// A loop length greater than the sample length taints the
	// instrument (zz_load.c's vset_parse marks it invalid rather than
	// failing outright); the error only surfaces because the song still
	// references it.
	data := buildVoiceSetBytes(8, map[int]instFixture{
		0: {PCM: []byte{1, 2, 3}, LoopLen: 9},
	})

	_, err := ParseVoiceSet(data, 1<<0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSet))
}

func TestParseVoiceSetHandlesOutOfOrderAddresses(t *testing.T) {
	// Instrument 1's body bytes are placed before instrument 0's, so the
	// offset table refers to them out of ascending order -- exercising
	// the descending-address unroll sort.
	pcmA := []byte{1, 1, 1, 1}
	pcmB := []byte{2, 2}

	var body []byte
	putPrefixedPCM := func(pcm []byte) int {
		start := len(body)
		prefix := make([]byte, 8)
		binary.BigEndian.PutUint32(prefix[0:4], 0xFFFFFFFF) // no loop
		binary.BigEndian.PutUint32(prefix[4:8], uint32(len(pcm))<<16)
		body = append(body, prefix...)
		body = append(body, pcm...)
		return start
	}
	prefixB := putPrefixedPCM(pcmB)
	prefixA := putPrefixedPCM(pcmA)

	const offsetTable = 2 + numInstruments*7
	hd := make([]byte, headerSize)
	hd[0] = 8
	hd[1] = 2 + 1
	binary.BigEndian.PutUint32(hd[offsetTable:offsetTable+4], uint32(prefixA+headerSize))
	binary.BigEndian.PutUint32(hd[offsetTable+4:offsetTable+8], uint32(prefixB+headerSize))

	data := append(hd, body...)
	vs, err := ParseVoiceSet(data, 0)
	require.NoError(t, err)
	assert.Equal(t, pcmA, vs.Insts[0].PCM[:len(pcmA)])
	assert.Equal(t, pcmB, vs.Insts[1].PCM[:len(pcmB)])
}
