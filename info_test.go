package quartet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInfoSummarizesSongAndSet(t *testing.T) {
	v0 := oneNoteVoice(4, StepMin)
	data := buildSongBytes(8, 16, 6, 4, 4, v0, silentVoice(), silentVoice(), silentVoice())
	song, err := ParseSong(data)
	require.NoError(t, err)
	set := basicVoiceSet(t)

	info := NewInfo(song, set)
	assert.Equal(t, uint8(8), info.SongKhz)
	assert.Equal(t, 1, info.InstrumentsUsed)
	assert.Equal(t, 1, info.InstrumentsBank)
	assert.Equal(t, 3, info.VoiceLength[0])
}

func TestNewInfoWithoutSet(t *testing.T) {
	v0 := oneNoteVoice(4, StepMin)
	data := buildSongBytes(8, 16, 6, 4, 4, v0, silentVoice(), silentVoice(), silentVoice())
	song, err := ParseSong(data)
	require.NoError(t, err)

	info := NewInfo(song, nil)
	assert.Equal(t, 0, info.InstrumentsBank)
}
