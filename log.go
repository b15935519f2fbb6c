package quartet

import (
	"log"
	"os"
)

// Logger is the thin severity-routed logging trait the core calls into.
// It mirrors zingzong's zz_log_err/wrn/inf/dbg quartet of severities
// rather than any particular Go logging package: the core has no opinion
// on log formatting or destination, only on the four severities a parser
// or player warning can carry.
type Logger interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
}

// stdLogger routes all four severities through a prefixed *log.Logger,
// the way the teacher's cmd/ tools call log.SetPrefix("modwav: ") and
// then just use log.Fatal/log.Printf.
type stdLogger struct {
	l     *log.Logger
	debug bool
}

// NewStdLogger returns a Logger writing to os.Stderr with the given
// prefix. Debug-level messages are dropped unless debug is true.
func NewStdLogger(prefix string, debug bool) Logger {
	return &stdLogger{l: log.New(os.Stderr, prefix, 0), debug: debug}
}

func (s *stdLogger) Errorf(format string, args ...any) { s.l.Printf("error: "+format, args...) }
func (s *stdLogger) Warnf(format string, args ...any)  { s.l.Printf("warning: "+format, args...) }
func (s *stdLogger) Infof(format string, args ...any)  { s.l.Printf(format, args...) }
func (s *stdLogger) Debugf(format string, args ...any) {
	if s.debug {
		s.l.Printf("debug: "+format, args...)
	}
}

// nullLogger discards everything. It is the default so that library use
// of the core never writes to stderr unasked.
type nullLogger struct{}

func (nullLogger) Errorf(string, ...any) {}
func (nullLogger) Warnf(string, ...any)  {}
func (nullLogger) Infof(string, ...any)  {}
func (nullLogger) Debugf(string, ...any) {}
