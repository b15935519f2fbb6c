// Command qdump prints a summary of a .4v, .set, or .4q file's header
// and voice layout, for inspecting a tune without playing it.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/fourvoice/quartet"
)

func main() {
	verbose := pflag.BoolP("verbose", "v", false, "also list each voice's command stream")
	pflag.Parse()

	if pflag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: qdump [-v] file...")
		os.Exit(2)
	}

	status := 0
	for _, path := range pflag.Args() {
		if err := dump(path, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			status = 1
		}
	}
	os.Exit(status)
}

func dump(path string, verbose bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var song *quartet.Song
	var set *quartet.VoiceSet
	var comment string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".4q":
		bundle, err := quartet.ParseBundle(data)
		if err != nil {
			return err
		}
		song, set, comment = bundle.Song, bundle.Set, bundle.Comment
	case ".4v":
		song, err = quartet.ParseSong(data)
		if err != nil {
			return err
		}
	case ".set":
		set, err = quartet.ParseVoiceSet(data, 0)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unrecognized extension %q", filepath.Ext(path))
	}

	fmt.Printf("%s\n", path)
	if song != nil {
		info := quartet.NewInfo(song, set)
		fmt.Printf("  song: %d kHz, bar %d, tempo %d, %d/%d time\n", info.SongKhz, info.Bar, info.Tempo, info.SigNum, info.SigDenom)
		fmt.Printf("  instruments used: %d\n", info.InstrumentsUsed)
		for i, n := range info.VoiceLength {
			fmt.Printf("  voice %d: %d commands\n", i, n)
		}
		if verbose {
			for i, v := range song.Voices {
				fmt.Printf("  voice %d commands:\n", i)
				for j, c := range v.Cmds {
					fmt.Printf("    %4d: %c len=%d step=%#x par=%#x\n", j, c.Op, c.Len, c.Step, c.Par)
				}
			}
		}
	}
	if set != nil {
		fmt.Printf("  voice set: %d kHz, %d instruments\n", set.Khz, countBits(set.Used))
		if verbose {
			for i := range set.Insts {
				if set.Used&(1<<uint(i)) == 0 {
					continue
				}
				in := &set.Insts[i]
				fmt.Printf("    inst %2d: len=%d loop=%d\n", i, in.Len, in.LoopLen)
			}
		}
	}
	if comment != "" {
		fmt.Printf("  comment: %s\n", comment)
	}
	return nil
}

func countBits(mask uint32) int {
	n := 0
	for mask != 0 {
		n += int(mask & 1)
		mask >>= 1
	}
	return n
}
