// Command qwav renders a Quartet song to a WAV file, driving the player
// and a chosen mixer variant to completion without any real-time audio
// device in the loop.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/fourvoice/quartet"
	"github.com/fourvoice/quartet/cmd/qwav/wav"
)

func main() {
	var (
		songPath   = pflag.StringP("song", "s", "", "path to a .4v song file")
		setPath    = pflag.StringP("set", "v", "", "path to a .set voice set file")
		bundlePath = pflag.StringP("bundle", "b", "", "path to a .4q bundle (overrides --song/--set)")
		outPath    = pflag.StringP("out", "o", "out.wav", "output WAV path")
		rate       = pflag.IntP("rate", "r", 44100, "output sample rate in Hz")
		mixerName  = pflag.StringP("mixer", "m", "linear", "mixer variant: "+mixerNames())
		maxTicks   = pflag.Uint32("max-ticks", 0, "stop after this many ticks (0 = play until natural/loop end)")
		debug      = pflag.Bool("debug", false, "enable debug logging")
	)
	pflag.Parse()

	log := quartet.NewStdLogger("qwav: ", *debug)

	song, set, err := loadInputs(*bundlePath, *songPath, *setPath)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	player, err := quartet.NewPlayer(song, set, log)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	if *maxTicks > 0 {
		player.SetMaxTicks(*maxTicks)
	}

	mixerID, err := quartet.ParseMixerID(*mixerName)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	mixer, err := quartet.NewMixer(mixerID, set, uint32(*rate), log)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	defer f.Close()

	writer, err := wav.NewWriter(f, *rate, mixerID.Channels())
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}

	samplesPerTick := *rate / quartet.DefaultTickHz
	buf := make([]int16, samplesPerTick*mixerID.Channels())

	for !player.Done() {
		ev, err := player.Tick()
		if err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
		if err := mixer.Push(ev); err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
		mixer.GenerateAudio(buf)
		if err := writer.WriteFrame(buf); err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
	}

	n, err := writer.Finish()
	if err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
	log.Infof("wrote %s (%d bytes)", *outPath, n)
}

func loadInputs(bundlePath, songPath, setPath string) (*quartet.Song, *quartet.VoiceSet, error) {
	if bundlePath != "" {
		data, err := os.ReadFile(bundlePath)
		if err != nil {
			return nil, nil, err
		}
		bundle, err := quartet.ParseBundle(data)
		if err != nil {
			return nil, nil, err
		}
		return bundle.Song, bundle.Set, nil
	}

	if songPath == "" || setPath == "" {
		return nil, nil, fmt.Errorf("need either --bundle or both --song and --set")
	}
	songBytes, err := os.ReadFile(songPath)
	if err != nil {
		return nil, nil, err
	}
	song, err := quartet.ParseSong(songBytes)
	if err != nil {
		return nil, nil, err
	}
	setBytes, err := os.ReadFile(setPath)
	if err != nil {
		return nil, nil, err
	}
	set, err := quartet.ParseVoiceSet(setBytes, song.InstUsed)
	if err != nil {
		return nil, nil, err
	}
	return song, set, nil
}

func mixerNames() string {
	s := ""
	for i, id := range quartet.ListMixers() {
		if i > 0 {
			s += ", "
		}
		s += id.String()
	}
	return s
}
