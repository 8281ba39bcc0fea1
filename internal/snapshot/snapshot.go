// Package snapshot implements the universal machine's magic-prefixed
// binary serialization format: a full save/restore of the execution
// core's registers and program counter, the array arena's contents, and
// the I/O mediator's backlog and paste buffers.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/nya3jp/umix/internal/arena"
	"github.com/nya3jp/umix/internal/core"
	"github.com/nya3jp/umix/internal/termio"
)

// Magic is the 4-byte prefix every snapshot begins with.
var Magic = [4]byte{'U', 'M', 'X', 0x01}

// ErrBadMagic is returned by Load when the stream does not begin with
// Magic. Per spec §7, this is non-fatal when encountered at the
// console's "load" command and fatal when encountered loading the
// initial snapshot named on the command line; callers decide which
// applies.
var ErrBadMagic = errors.New("corrupted snapshot!")

// Save writes a complete snapshot of c, a, and med to w: magic, then the
// core's pc and registers, then the arena's slot table, then the I/O
// mediator's rings, in that order. The mediator linearizes its backlog
// ring oldest-first so Load never needs to know the original ring head
// pointer.
func Save(w io.Writer, c *core.Core, a *arena.Arena, med *termio.Mediator) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, c.PC); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, c.Regs); err != nil {
		return err
	}

	if err := a.SaveState(w); err != nil {
		return fmt.Errorf("snapshot: saving arena: %w", err)
	}

	if err := med.SaveState(w); err != nil {
		return fmt.Errorf("snapshot: saving io: %w", err)
	}

	return nil
}

// Load reads a snapshot from r and overwrites c, a, and med in place.
// ErrBadMagic is returned, with none of the three components touched,
// if the stream does not begin with Magic.
func Load(r io.Reader, c *core.Core, a *arena.Arena, med *termio.Mediator) error {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return err
	}

	if !bytes.Equal(magic[:], Magic[:]) {
		return ErrBadMagic
	}

	var pc uint32
	if err := binary.Read(r, binary.LittleEndian, &pc); err != nil {
		return err
	}

	var regs [8]uint32
	if err := binary.Read(r, binary.LittleEndian, &regs); err != nil {
		return err
	}

	if err := a.LoadState(r); err != nil {
		return fmt.Errorf("snapshot: loading arena: %w", err)
	}

	if err := med.LoadState(r); err != nil {
		return fmt.Errorf("snapshot: loading io: %w", err)
	}

	c.PC = pc
	c.Regs = regs

	return nil
}
