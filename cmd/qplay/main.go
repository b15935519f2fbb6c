// Command qplay plays a Quartet song through the default audio device,
// showing which note and instrument each voice is on and taking
// single-key transport commands while it runs.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/fatih/color"
	"github.com/gordonklaus/portaudio"

	"github.com/fourvoice/quartet"
)

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"
)

var (
	flagHz    = flag.Int("hz", 44100, "output hz")
	flagMixer = flag.String("mixer", "linear", "mixer variant")
)

// engine drives a Player and Mixer from portaudio's callback, rendering
// exactly one sequencer tick's worth of samples at a time and handing
// them out of a small internal buffer as the callback asks for more.
type engine struct {
	player  *quartet.Player
	mixer   quartet.Mixer
	tickBuf []int16
	tickPos int
	paused  atomic.Bool
}

func (e *engine) fill(out []int16) {
	if e.paused.Load() {
		for i := range out {
			out[i] = 0
		}
		return
	}
	i := 0
	for i < len(out) {
		if e.tickPos >= len(e.tickBuf) {
			if e.player.Done() {
				for ; i < len(out); i++ {
					out[i] = 0
				}
				return
			}
			ev, err := e.player.Tick()
			if err != nil {
				log.Printf("tick error: %v", err)
				for ; i < len(out); i++ {
					out[i] = 0
				}
				return
			}
			if err := e.mixer.Push(ev); err != nil {
				log.Printf("mixer push error: %v", err)
			}
			e.mixer.GenerateAudio(e.tickBuf)
			e.tickPos = 0
		}
		n := copy(out[i:], e.tickBuf[e.tickPos:])
		i += n
		e.tickPos += n
	}
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("qplay: ")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("missing .4q/.4v file")
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	bundle, err := quartet.ParseBundle(data)
	if err != nil {
		log.Fatal(err)
	}

	player, err := quartet.NewPlayer(bundle.Song, bundle.Set, nil)
	if err != nil {
		log.Fatal(err)
	}

	mixerID, err := quartet.ParseMixerID(*flagMixer)
	if err != nil {
		log.Fatal(err)
	}
	mixer, err := quartet.NewMixer(mixerID, bundle.Set, uint32(*flagHz), nil)
	if err != nil {
		log.Fatal(err)
	}

	samplesPerTick := (*flagHz / quartet.DefaultTickHz) * mixerID.Channels()
	eng := &engine{player: player, mixer: mixer, tickBuf: make([]int16, samplesPerTick), tickPos: samplesPerTick}

	if err := portaudio.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer portaudio.Terminate()

	stream, err := portaudio.OpenDefaultStream(0, mixerID.Channels(), float64(*flagHz), portaudio.FramesPerBufferUnspecified, eng.fill)
	if err != nil {
		log.Fatal(err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		log.Fatal(err)
	}
	defer stream.Stop()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT)

	quit := make(chan struct{})
	go func() {
		keyboard.Listen(func(key keys.Key) (stop bool, err error) {
			switch {
			case key.Code == keys.Space:
				eng.paused.Store(!eng.paused.Load())
			case key.Code == keys.RuneKey && key.String() == "r":
				player.Start()
			case key.Code == keys.RuneKey && key.String() == "q", key.Code == keys.CtrlC, key.Code == keys.Escape:
				close(quit)
				return true, nil
			}
			return false, nil
		})
	}()

	fmt.Print(hideCursor)
	defer fmt.Print(showCursor)

	cyan := color.New(color.FgCyan).SprintfFunc()
	yellow := color.New(color.FgYellow).SprintfFunc()

	if bundle.Comment != "" {
		fmt.Println(bundle.Comment)
	}
	fmt.Println("space: pause   r: restart   q: quit")

	for !player.Done() {
		select {
		case <-sigch:
			return
		case <-quit:
			return
		default:
		}
		pos := player.Position()
		fmt.Print(escape + "1K\r")
		fmt.Printf("tick %s  ", cyan("%6d", pos.Tick))
		for v := 0; v < 4; v++ {
			inst, step, ok := player.NoteDataFor(v)
			if !ok {
				fmt.Print("  ---       ")
				continue
			}
			fmt.Print(yellow("i%02d@%#06x  ", inst, uint32(step)))
		}
	}
}
