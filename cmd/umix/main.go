// Command umix runs a universal machine program: a scroll file loaded
// as the initial program, optionally resumed from a prior snapshot, run
// to completion against the terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/nya3jp/umix/internal/console"
	"github.com/nya3jp/umix/internal/machine"
	"github.com/nya3jp/umix/internal/scroll"
	"github.com/nya3jp/umix/internal/snapshot"
	"github.com/nya3jp/umix/internal/termio"
	"github.com/nya3jp/umix/internal/umerr"
	"github.com/nya3jp/umix/internal/umlog"
)

// onceFlag is a flag.Value that errors if Set is called more than once,
// so "-f a -f b" is the fatal "multiple option" error spec §6 requires
// instead of silently keeping the last value — grounded on
// original_source/c/args.c's umfile/umxfile duplicate checks.
type onceFlag struct {
	value string
	set   bool
	name  string
}

func (f *onceFlag) String() string { return f.value }

func (f *onceFlag) Set(v string) error {
	if f.set {
		return fmt.Errorf("multiple -%s option!", f.name)
	}

	f.value = v
	f.set = true

	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	log := umlog.New(os.Stderr)

	scrollFlag := &onceFlag{name: "f"}
	snapFlag := &onceFlag{name: "s"}

	fs := flag.NewFlagSet("umix", flag.ContinueOnError)
	fs.Var(scrollFlag, "f", "program file (default umix.um)")
	fs.Var(snapFlag, "s", "initial snapshot file")

	verbose := fs.Bool("v", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *verbose {
		umlog.SetLevel(umlog.Debug)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unknown argument: %s\n", fs.Arg(0))
		return 1
	}

	scrollPath := scrollFlag.value
	if scrollPath == "" {
		scrollPath = "umix.um"
	}

	raw, err := termio.EnableRaw(os.Stdin)
	if err != nil {
		log.Warn("enabling raw terminal mode", "err", err)
		raw = nil
	}

	defer raw.Restore()

	if rows, cols, ok := termio.WindowSize(int(os.Stdin.Fd())); ok {
		log.Debug("terminal size", "rows", rows, "cols", cols)
	}

	m := machine.New(os.Stdin, os.Stdout)

	con := console.New(m, os.Stdout, log)
	con.Cleanup = raw.Restore
	m.IO.Hook = con.Enter

	if err := loadScroll(m, scrollPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if snapFlag.set {
		if err := loadInitialSnapshot(m, snapFlag.value); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if err := m.Run(nil); err != nil {
		log.Error("trap", "err", err)
		fmt.Fprintln(os.Stderr, err)

		return 1
	}

	return 0
}

func loadScroll(m *machine.Machine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return umerr.Wrap("opening scroll", umerr.CodeBadScroll, err)
	}
	defer f.Close()

	words, err := scroll.Load(f)
	if err != nil {
		return umerr.Wrap("loading scroll", umerr.CodeBadScroll, err)
	}

	m.LoadProgram(words)

	return nil
}

func loadInitialSnapshot(m *machine.Machine, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return umerr.Wrap("opening snapshot", umerr.CodeBadSnapshot, err)
	}
	defer f.Close()

	if err := m.Load(f); err != nil {
		if errors.Is(err, snapshot.ErrBadMagic) {
			return umerr.New("loading snapshot", umerr.CodeBadSnapshot, err.Error())
		}

		return umerr.Wrap("loading snapshot", umerr.CodeBadSnapshot, err)
	}

	return m.IO.PrintBacklog()
}
