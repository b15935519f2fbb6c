package quartet

import "math/bits"

// Info summarizes a Song/VoiceSet pair for a UI or dump tool: the bits a
// listing needs without walking the command streams itself.
type Info struct {
	SongKhz         uint8
	Bar, Tempo      uint8
	SigNum, SigDenom uint8
	InstrumentsUsed int
	InstrumentsBank int // instruments present in the voice set, if one was supplied
	VoiceLength     [4]int
}

// NewInfo summarizes song, and set if the caller has one loaded alongside
// it.
func NewInfo(song *Song, set *VoiceSet) Info {
	info := Info{
		SongKhz:         song.Khz,
		Bar:             song.Bar,
		Tempo:           song.Tempo,
		SigNum:          song.SigNum,
		SigDenom:        song.SigDenom,
		InstrumentsUsed: bits.OnesCount32(song.InstUsed),
	}
	for i := range song.Voices {
		info.VoiceLength[i] = len(song.Voices[i].Cmds)
	}
	if set != nil {
		info.InstrumentsBank = bits.OnesCount32(set.Used)
	}
	return info
}
