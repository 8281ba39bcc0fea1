// Package console implements the universal machine's interactive
// debugger: the command set reachable by typing the escape character
// while a program runs. It is deliberately thin glue (spec §1 lists the
// console's command set as an external collaborator whose interface,
// not implementation weight, is specified) wired to the machine, arena,
// and I/O mediator it inspects and mutates.
package console

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nya3jp/umix/internal/machine"
	"github.com/nya3jp/umix/internal/snapshot"
)

// DefaultSnapshotPath is used by "save"/"load" when no path is given.
const DefaultSnapshotPath = "snapshot.umx"

// Console mediates the "stat"/"save"/"load"/"send"/"halt"/"exit" command
// set. It is wired as the I/O mediator's escape hook.
type Console struct {
	Machine *machine.Machine
	Out     *os.File
	Log     *slog.Logger

	// Cleanup, if set, runs before "halt"/"quit"/"q" terminates the
	// process. cmd/umix wires this to the raw-mode terminal's Restore so
	// the immediate exit() the original performs (console.c calls
	// exit(0) directly, with nothing to restore) doesn't leave this
	// enrichment's raw terminal mode stuck on the user's shell.
	Cleanup func() error
}

// New creates a Console bound to m, writing command responses to out.
func New(m *machine.Machine, out *os.File, log *slog.Logger) *Console {
	return &Console{Machine: m, Out: out, Log: log}
}

// Enter is the escape-character hook: it is called synchronously from
// inside the I/O mediator's Get, with the dispatch loop still on the
// call stack above it. Per the original's console_enter: the first line
// typed is treated as a single one-shot command unless it is blank, in
// which case a full "um> " prompt loop starts until "exit"/"x" or the
// process is asked to halt/quit/q.
func (c *Console) Enter() {
	line, ok := c.Machine.IO.ReadLine()
	if !ok {
		return
	}

	cmd, rest := splitCommand(line)
	if cmd == "" {
		c.repl()
		return
	}

	if c.dispatch(cmd, rest) == actionLoaded {
		c.printBacklog()
	}
}

func (c *Console) repl() {
	for {
		fmt.Fprint(c.Out, "um> ")

		line, ok := c.Machine.IO.ReadLine()
		if !ok {
			return
		}

		cmd, rest := splitCommand(line)
		if cmd == "" {
			continue
		}

		if c.dispatch(cmd, rest) == actionExit {
			break
		}
	}

	c.printBacklog()
}

func (c *Console) printBacklog() {
	if err := c.Machine.IO.PrintBacklog(); err != nil {
		c.Log.Error("printing backlog", "err", err)
	}
}

type action int

const (
	actionNone action = iota
	actionLoaded
	actionExit
)

func splitCommand(line string) (cmd, rest string) {
	line = strings.TrimLeft(line, " \t")
	fields := strings.SplitN(line, " ", 2)
	cmd = fields[0]

	if len(fields) == 2 {
		rest = strings.TrimSpace(fields[1])
	}

	return cmd, rest
}

func (c *Console) dispatch(cmd, arg string) action {
	switch cmd {
	case "stat":
		c.cmdStat()
	case "save":
		c.cmdSave(arg)
	case "load":
		c.cmdLoad(arg)
		return actionLoaded
	case "send":
		c.cmdSend(arg)
	case "halt", "quit", "q":
		if c.Cleanup != nil {
			if err := c.Cleanup(); err != nil {
				c.Log.Warn("cleanup before exit", "err", err)
			}
		}

		os.Exit(0)
	case "exit", "x":
		return actionExit
	default:
		fmt.Fprintf(c.Out, "unknown command: %s\n", cmd)
	}

	return actionNone
}

func (c *Console) cmdStat() {
	s := c.Machine.Stat()
	fmt.Fprintf(c.Out,
		"module core:\n\texecuted instructions: %d\n"+
			"module arena:\n\ttotal reserved arrays: %d\n\ttotal active arrays: %d\n"+
			"\ttotal inactive arrays: %d\n\tnon-trivial loads: %d\n\tcopy-on-write breaks: %d\n"+
			"module umem:\n\ttotal allocated platters: %d\n",
		s.Instructions, s.Arena.Reserved, s.Arena.Active, s.Arena.Inactive, s.Arena.Loads, s.Arena.CowBreaks,
		s.PlattersInUse)
}

func (c *Console) cmdSave(path string) {
	if path == "" {
		path = DefaultSnapshotPath
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(c.Out, "opening file: %s\n", err)
		return
	}
	defer f.Close()

	if err := c.Machine.Save(f); err != nil {
		fmt.Fprintf(c.Out, "saving snapshot: %s\n", err)
		return
	}

	info, _ := f.Stat()

	var size int64
	if info != nil {
		size = info.Size()
	}

	fmt.Fprintf(c.Out, "saved to %s, %d bytes.\n", path, size)
}

func (c *Console) cmdLoad(path string) {
	if path == "" {
		path = DefaultSnapshotPath
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(c.Out, "opening file: %s\n", err)
		return
	}
	defer f.Close()

	if err := c.Machine.Load(f); err != nil {
		if err == snapshot.ErrBadMagic {
			fmt.Fprintln(c.Out, "corrupted snapshot!")
			return
		}

		fmt.Fprintf(c.Out, "loading snapshot: %s\n", err)
		return
	}

	info, _ := f.Stat()

	var size int64
	if info != nil {
		size = info.Size()
	}

	fmt.Fprintf(c.Out, "loaded from %s, %d bytes.\n", path, size)
}

func (c *Console) cmdSend(path string) {
	if path == "" {
		fmt.Fprintln(c.Out, "no filename specified!")
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(c.Out, "opening file: %s\n", err)
		return
	}

	c.Machine.IO.FeedPaste(data)
}
