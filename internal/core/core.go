// Package core implements the universal machine's execution engine: eight
// registers, a program counter, and the fetch-decode-execute loop for the
// fourteen UM opcodes.
package core

import "fmt"

// Arena is the narrow interface the execution core needs from the array
// arena. Depending on this interface rather than *arena.Arena directly
// keeps the hot dispatch loop decoupled from arena's allocation and
// snapshot machinery, the way elsie's CPU depends on a Memory interface
// rather than importing its memory package's concrete type.
type Arena interface {
	Get(id uint32, writing bool) []uint32
	Length(id uint32) uint32
	Valid(id uint32) bool
	NewArray(size uint32) uint32
	Delete(id uint32)
	ReplaceProgram(id uint32)
}

// IO is the narrow interface the execution core needs from the I/O
// mediator.
type IO interface {
	Put(b byte)
	Get() uint32
}

// TrapError is returned when the core encounters UM-undefined behavior:
// division by zero, an unknown opcode, an invalid array identifier, or
// an out-of-range array index. The reference policy (spec §7) is to
// trap fatally rather than guess at recovery.
type TrapError struct {
	PC      uint32
	Platter uint32
	Reason  string
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("trap at pc=%d, platter=%#08x: %s", e.PC, e.Platter, e.Reason)
}

// Core holds the eight general-purpose registers and program counter of
// a running universal machine, plus the executed-instruction counter
// used for statistics.
type Core struct {
	Regs  [8]uint32
	PC    uint32
	insts uint64

	arena Arena
	io    IO
}

// New creates a Core wired to the given arena and I/O mediator.
func New(a Arena, io IO) *Core {
	return &Core{arena: a, io: io}
}

// Instructions reports the number of instructions dispatched so far.
func (c *Core) Instructions() uint64 { return c.insts }

// halted is returned by Step (as a sentinel via the bool return) to tell
// Run to stop without it being an error.

// Step fetches, decodes, and executes a single instruction. It reports
// whether the machine halted and any trap encountered. The executed
// instruction counter is incremented exactly once per instruction
// fetched, including halts; a pc past the end of array 0 traps before
// any fetch and does not count.
func (c *Core) Step() (halted bool, err error) {
	programLen := c.arena.Length(0)
	if c.PC >= programLen {
		return false, &TrapError{PC: c.PC, Reason: "program counter ran past the end of array 0"}
	}

	program := c.arena.Get(0, false)
	p := program[c.PC]
	c.insts++

	op := p >> 28

	if op == 13 {
		a := (p >> 25) & 7
		v := p & 0x01FFFFFF
		c.Regs[a] = v
		c.PC++

		return false, nil
	}

	a := (p >> 6) & 7
	b := (p >> 3) & 7
	cc := p & 7

	switch op {
	case 0: // conditional move
		if c.Regs[cc] != 0 {
			c.Regs[a] = c.Regs[b]
		}

	case 1: // array index
		id := c.Regs[b]
		if !c.arena.Valid(id) {
			return false, c.trap(p, fmt.Sprintf("array index: invalid array identifier %d", id))
		}

		idx := c.Regs[cc]
		if idx >= c.arena.Length(id) {
			return false, c.trap(p, fmt.Sprintf("array index: offset %d out of range for array %d (length %d)", idx, id, c.arena.Length(id)))
		}

		c.Regs[a] = c.arena.Get(id, false)[idx]

	case 2: // array amendment
		id := c.Regs[a]
		if !c.arena.Valid(id) {
			return false, c.trap(p, fmt.Sprintf("array amendment: invalid array identifier %d", id))
		}

		idx := c.Regs[b]
		if idx >= c.arena.Length(id) {
			return false, c.trap(p, fmt.Sprintf("array amendment: offset %d out of range for array %d (length %d)", idx, id, c.arena.Length(id)))
		}

		c.arena.Get(id, true)[idx] = c.Regs[cc]

	case 3: // addition
		c.Regs[a] = c.Regs[b] + c.Regs[cc]

	case 4: // multiplication
		c.Regs[a] = c.Regs[b] * c.Regs[cc]

	case 5: // division
		if c.Regs[cc] == 0 {
			return false, c.trap(p, "division by zero")
		}

		c.Regs[a] = c.Regs[b] / c.Regs[cc]

	case 6: // not-and
		c.Regs[a] = ^(c.Regs[b] & c.Regs[cc])

	case 7: // halt
		return true, nil

	case 8: // allocation
		c.Regs[b] = c.arena.NewArray(c.Regs[cc])

	case 9: // abandonment
		id := c.Regs[cc]
		if id == 0 || !c.arena.Valid(id) {
			return false, c.trap(p, fmt.Sprintf("abandonment: invalid array identifier %d", id))
		}

		c.arena.Delete(id)

	case 10: // output
		c.io.Put(byte(c.Regs[cc]))

	case 11: // input
		c.Regs[cc] = c.io.Get()

	case 12: // load program
		id := c.Regs[b]
		if !c.arena.Valid(id) {
			return false, c.trap(p, fmt.Sprintf("load program: invalid array identifier %d", id))
		}

		c.arena.ReplaceProgram(id)
		c.PC = c.Regs[cc]

		return false, nil

	default:
		return false, c.trap(p, fmt.Sprintf("unknown opcode %d", op))
	}

	c.PC++

	return false, nil
}

func (c *Core) trap(p uint32, reason string) error {
	return &TrapError{PC: c.PC, Platter: p, Reason: reason}
}

// Run executes Step in a loop until the machine halts or a trap occurs.
// stop, if non-nil, is polled between instructions so a caller (e.g. the
// console) can interrupt a long-running program without the core itself
// knowing anything about contexts or goroutines — it remains a plain
// synchronous function, matching spec §5's strictly single-threaded
// model.
func (c *Core) Run(stop func() bool) error {
	for {
		if stop != nil && stop() {
			return nil
		}

		halted, err := c.Step()
		if err != nil {
			return err
		}

		if halted {
			return nil
		}
	}
}
