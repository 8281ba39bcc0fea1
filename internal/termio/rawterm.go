package termio

import (
	"os"

	"golang.org/x/term"
)

// RawTerminal puts a *os.File into raw mode for the lifetime of an
// interpreter run, so the escape byte (EscapeByte) is delivered to
// Mediator.Get the instant it is typed instead of after a full line is
// buffered by the line discipline. It is adapted from the raw-mode
// management in elsie's console (internal/tty), stripped of that
// package's goroutine-driven async reads: this interpreter is strictly
// single-threaded and reads are synchronous, so all RawTerminal needs to
// own is the saved termios state and how to restore it.
type RawTerminal struct {
	fd    int
	state *term.State
}

// EnableRaw puts f into raw mode if it is an interactive terminal. If f
// is not a TTY (e.g. piped test input, or output redirected to a file),
// EnableRaw is a no-op and returns a RawTerminal whose Restore does
// nothing — callers do not need to special-case non-interactive streams.
func EnableRaw(f *os.File) (*RawTerminal, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return &RawTerminal{fd: -1}, nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	return &RawTerminal{fd: fd, state: state}, nil
}

// Restore returns the terminal to the state it was in before EnableRaw,
// if it had in fact been put into raw mode. A call deferred in main
// covers a normal halt and a trapped error; the console's
// "halt"/"quit"/"q" ends the process with os.Exit, which skips deferred
// calls, so that path calls Restore through Console.Cleanup instead.
func (r *RawTerminal) Restore() error {
	if r == nil || r.state == nil {
		return nil
	}

	return term.Restore(r.fd, r.state)
}
