package quartet

import "fmt"

// DefaultTickHz is the sequencer's nominal tick rate: every voice's
// command durations are expressed in ticks of 1/200th of a second.
const DefaultTickHz = 200

// TrigKind describes what happened to a channel on the tick just
// processed, the signal the mixer's push callback reacts to.
type TrigKind int

const (
	TrigNop TrigKind = iota
	TrigNote
	TrigSlide
	TrigStop
)

func (t TrigKind) String() string {
	switch t {
	case TrigNote:
		return "note"
	case TrigSlide:
		return "slide"
	case TrigStop:
		return "stop"
	default:
		return "nop"
	}
}

// VoiceTrig is one voice's trigger result for a single tick.
type VoiceTrig struct {
	Kind       TrigKind
	Instrument int
	Step       Step
}

// TickEvent is the sequencer's output for a single tick: up to four
// voice triggers, handed to a Mixer's Push.
type TickEvent struct {
	Tick   uint32
	Voices [4]VoiceTrig
}

type loopFrame struct {
	target int
	count  int // -2 unset, else remaining iterations
}

// channel is one voice's running position through its command stream.
type channel struct {
	cmds       []SeqCmd
	pos        int
	curLen     int
	instrument int
	sq0, sqN   int
	hasLooped  bool
	loopStack  []loopFrame

	// noteCur/noteAim/noteStp are the portamento slide state: the voice's
	// current pitch, the pitch an in-flight slide is ramping toward, and
	// the signed per-tick increment (0 when no slide is in flight).
	noteCur, noteAim int32
	noteStp          int32
}

func (ch *channel) reset(vs VoiceSeq) {
	ch.cmds = vs.Cmds
	ch.pos = 0
	ch.curLen = 0
	ch.instrument = 0
	ch.sq0, ch.sqN = vs.Sq0, vs.SqN
	ch.hasLooped = vs.Sq0 == -1
	ch.loopStack = ch.loopStack[:0]
	ch.noteCur, ch.noteAim, ch.noteStp = 0, 0, 0
}

// tick advances this channel by one tick, returning the trigger produced.
// The portamento slide step runs unconditionally on every tick, even one
// that is otherwise just counting down a P/R/S command's duration, so a
// slide ramps smoothly regardless of what else the voice is doing.
func (ch *channel) tick() (VoiceTrig, error) {
	trig := VoiceTrig{Kind: TrigNop}
	if ch.noteStp != 0 {
		ch.noteCur += ch.noteStp
		if ch.noteStp > 0 {
			if ch.noteCur >= ch.noteAim {
				ch.noteCur = ch.noteAim
				ch.noteStp = 0
			}
		} else if ch.noteCur <= ch.noteAim {
			ch.noteCur = ch.noteAim
			ch.noteStp = 0
		}
		trig = VoiceTrig{Kind: TrigSlide, Instrument: ch.instrument, Step: Step(ch.noteCur)}
	}

	if ch.curLen > 0 {
		ch.curLen--
		return trig, nil
	}

	for {
		if ch.pos >= len(ch.cmds) {
			return VoiceTrig{}, wrapErr(KindPlayer, fmt.Errorf("%w: channel ran past its command stream without a closing F", ErrPlayer))
		}
		c := ch.cmds[ch.pos]
		switch c.Op {
		case OpPlayNote:
			ch.curLen = int(c.Len) - 1
			ch.pos++
			ch.noteCur, ch.noteAim, ch.noteStp = int32(c.Step), int32(c.Step), 0
			return VoiceTrig{Kind: TrigNote, Instrument: ch.instrument, Step: c.Step}, nil
		case OpSlideToNote:
			ch.curLen = int(c.Len) - 1
			ch.pos++
			ch.noteAim = int32(c.Step)
			ch.noteStp = int32(c.Par) // sign-extended: the ramp may run either direction
			return trig, nil
		case OpRest:
			ch.curLen = int(c.Len) - 1
			ch.pos++
			ch.noteCur = 0
			return VoiceTrig{Kind: TrigStop}, nil
		case OpVoiceChange:
			ch.instrument = int(c.Par >> 2)
			ch.pos++
		case OpSetLoopPoint:
			if len(ch.loopStack) >= maxLoopDepth {
				return VoiceTrig{}, wrapErr(KindPlayer, ErrLoopOverflow)
			}
			ch.loopStack = append(ch.loopStack, loopFrame{target: ch.pos + 1, count: -2})
			ch.pos++
		case OpLoopToPoint:
			if len(ch.loopStack) == 0 {
				// A dangling L with no matching l loops back to the
				// start of this voice's own sequence.
				ch.loopStack = append(ch.loopStack, loopFrame{target: 0, count: -2})
			}
			top := &ch.loopStack[len(ch.loopStack)-1]
			if top.count == -2 {
				// Suppress a loop spanning the whole sound-producing
				// range of the voice: repeating the entire sequence
				// would only delay the voice's end-of-stream F, and so
				// its has-looped bit.
				if top.target <= ch.sq0 && ch.pos > ch.sqN {
					top.count = 1
				} else {
					top.count = int(c.Par>>16) + 1
				}
			}
			top.count--
			if top.count != 0 {
				ch.pos = top.target
			} else {
				ch.loopStack = ch.loopStack[:len(ch.loopStack)-1]
				ch.pos++
			}
		case OpEndOfVoice:
			ch.hasLooped = true
			ch.pos = 0
			ch.loopStack = ch.loopStack[:0]
		default:
			return VoiceTrig{}, wrapErr(KindInternal, fmt.Errorf("%w: channel hit unknown opcode %q", ErrInternal, c.Op))
		}
	}
}

// Player is the Quartet sequencer: it walks a Song's four voices one tick
// at a time, tracking loop stacks and note durations, and reports what
// each voice did so a Mixer can react.
type Player struct {
	song     *Song
	set      *VoiceSet
	chans    [4]channel
	tick     uint32
	maxTicks uint32
	log      Logger
}

// NewPlayer pairs a Song with the VoiceSet it plays against. It returns
// an error if the two are not compatible, the same cross-check
// ParseVoiceSet performs when given a song's instrument mask directly.
func NewPlayer(song *Song, set *VoiceSet, log Logger) (*Player, error) {
	if song.InstUsed&^set.Used != 0 {
		return nil, wrapErr(KindPlayer, fmt.Errorf("%w: song references instruments %#x missing from voice set", ErrInvalidSet, song.InstUsed&^set.Used))
	}
	if log == nil {
		log = nullLogger{}
	}
	p := &Player{song: song, set: set, log: log}
	p.Start()
	return p, nil
}

// SetMaxTicks bounds playback to n ticks regardless of loop state, 0
// meaning unbounded (rely on natural or looped end detection only).
func (p *Player) SetMaxTicks(n uint32) { p.maxTicks = n }

// Start resets playback to the first tick of every voice. It is the only
// way to rewind a Player; there is no separate "reset" entry point,
// matching how a fresh play-through and a restart are the same operation.
func (p *Player) Start() {
	p.tick = 0
	for i := range p.chans {
		p.chans[i].reset(p.song.Voices[i])
	}
}

// Song and Set expose the data the Player was built from.
func (p *Player) Song() *Song      { return p.song }
func (p *Player) Set() *VoiceSet   { return p.set }

// Tick advances every voice by one tick and reports what each did.
func (p *Player) Tick() (TickEvent, error) {
	var ev TickEvent
	ev.Tick = p.tick
	for i := range p.chans {
		trig, err := p.chans[i].tick()
		if err != nil {
			return TickEvent{}, err
		}
		ev.Voices[i] = trig
	}
	p.tick++
	return ev, nil
}

// Done reports whether playback has reached its natural or configured
// end: every voice has looped back to its start at least once, or
// SetMaxTicks's bound has been reached.
func (p *Player) Done() bool {
	if p.maxTicks != 0 && p.tick >= p.maxTicks {
		return true
	}
	for i := range p.chans {
		if !p.chans[i].hasLooped {
			return false
		}
	}
	return true
}

// NoteDataFor reports the instrument and pitch a voice is currently
// sustaining, for UI and introspection use; ok is false if the voice has
// not yet played its first note.
func (p *Player) NoteDataFor(voice int) (instrument int, step Step, ok bool) {
	ch := &p.chans[voice]
	if ch.pos == 0 && ch.curLen == 0 {
		return 0, 0, false
	}
	idx := ch.pos - 1
	for idx >= 0 {
		switch ch.cmds[idx].Op {
		case OpPlayNote, OpSlideToNote:
			return ch.instrument, ch.cmds[idx].Step, true
		}
		idx--
	}
	return 0, 0, false
}

// Position reports the current tick and per-voice command-stream index,
// the minimum state an external progress display needs.
type Position struct {
	Tick   uint32
	Voices [4]int
}

func (p *Player) Position() Position {
	var pos Position
	pos.Tick = p.tick
	for i := range p.chans {
		pos.Voices[i] = p.chans[i].pos
	}
	return pos
}
