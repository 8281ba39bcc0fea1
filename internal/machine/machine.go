// Package machine wires the array arena, I/O mediator, and execution
// core into one long-lived value, and exposes the operations the CLI and
// console need: running, snapshotting, and feeding paste input.
package machine

import (
	"io"

	"github.com/nya3jp/umix/internal/arena"
	"github.com/nya3jp/umix/internal/core"
	"github.com/nya3jp/umix/internal/platter"
	"github.com/nya3jp/umix/internal/snapshot"
	"github.com/nya3jp/umix/internal/termio"
)

// Machine is a complete universal machine: arena, I/O, and execution
// core, modeled as explicit state objects rather than ambient globals.
// The console may call Load from inside the I/O mediator's escape hook
// while the core's dispatch loop is still on the call stack. Load does
// not swap in new objects: it overwrites the arena, then the mediator,
// then the core's registers and pc, in place and one after another. A
// bad magic prefix leaves all three untouched; a stream that fails after
// the magic leaves them partially overwritten.
type Machine struct {
	Arena *arena.Arena
	IO    *termio.Mediator
	Core  *core.Core
}

// New creates a Machine reading console/keyboard input from in and
// writing terminal output to out. The initial program (array 0) is
// empty; callers load a scroll or an initial snapshot before running.
func New(in io.Reader, out io.Writer) *Machine {
	a := arena.New()
	med := termio.New(in, out)
	c := core.New(a, med)

	return &Machine{Arena: a, IO: med, Core: c}
}

// LoadProgram installs words as the new program (array 0), via the same
// allocate-then-ReplaceProgram path a running UM program itself would
// take for opcode 12, and resets pc to 0. Used by the scroll loader at
// startup.
func (m *Machine) LoadProgram(words []uint32) {
	id := m.Arena.NewArray(uint32(len(words)))
	copy(m.Arena.Get(id, true), words)
	m.Arena.ReplaceProgram(id)
	m.Core.PC = 0
}

// Run executes instructions until halt or a trap. stop is polled between
// instructions; pass nil to run to completion or a fatal trap.
func (m *Machine) Run(stop func() bool) error {
	return m.Core.Run(stop)
}

// Save writes a full snapshot of the machine to w.
func (m *Machine) Save(w io.Writer) error {
	return snapshot.Save(w, m.Core, m.Arena, m.IO)
}

// Load restores a full snapshot from r, replacing the arena, I/O state,
// and core registers/pc in place. On ErrBadMagic none of the three
// components are modified.
func (m *Machine) Load(r io.Reader) error {
	return snapshot.Load(r, m.Core, m.Arena, m.IO)
}

// Stats aggregates the statistics the console's "stat" command reports.
type Stats struct {
	Arena         arena.Stats
	Instructions  uint64
	PlattersInUse int64
}

// Stat reports current machine statistics.
func (m *Machine) Stat() Stats {
	return Stats{
		Arena:         m.Arena.Stat(),
		Instructions:  m.Core.Instructions(),
		PlattersInUse: platter.InUse(),
	}
}
