package smooch

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// StdLogger writes leveled lines to Writer, or stderr when Writer is nil.
// Debug and Info lines are dropped unless Verbose is set.
type StdLogger struct {
	Prefix  string
	Verbose bool
	Writer  io.Writer
}

// NewStdLogger returns a SMOOCH prefixed logger. The zero configuration used
// by NewBinder and NewHandle is NewStdLogger(false).
func NewStdLogger(verbose bool) *StdLogger {
	return &StdLogger{Prefix: "SMOOCH", Verbose: verbose}
}

func (l *StdLogger) Debug(format string, args ...any) {
	if l.Verbose {
		l.write("DBG", format, args...)
	}
}

func (l *StdLogger) Info(format string, args ...any) {
	if l.Verbose {
		l.write("INF", format, args...)
	}
}

func (l *StdLogger) Error(format string, args ...any) {
	l.write("ERR", format, args...)
}

func (l *StdLogger) write(level, format string, args ...any) {
	w := l.Writer
	if w == nil {
		w = os.Stderr
	}
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if l.Prefix == "" {
		fmt.Fprintf(w, "[%s] %s\n", level, msg)
		return
	}
	fmt.Fprintf(w, "[%s] %s %s\n", level, l.Prefix, msg)
}
