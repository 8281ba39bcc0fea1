// Package arena implements the universal machine's array arena: a table
// of identifier-addressed platter arrays with free-list recycling and a
// copy-on-write optimization for the "load program" instruction.
package arena

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nya3jp/umix/internal/platter"
)

// slot holds one array's backing buffer. A nil head means the
// identifier is free.
type slot struct {
	head []platter.Word
}

func (s slot) free() bool { return s.head == nil }

// Arena owns every allocated array and hands out stable identifiers for
// them. At most one array at a time may be a "cow source": array 0's
// buffer is aliased with it until a write-side Get breaks the alias or
// the cow source is deleted.
//
// Arena is not safe for concurrent use; the interpreter is strictly
// single-threaded (spec Non-goals).
type Arena struct {
	slots   []slot
	free    []uint32 // stack; top of stack is free[len-1]
	cowSrc  uint32   // 0 means "no cow armed" (0 can never itself be a cow source)
	loads   int
	cowBrks int
}

// New creates an arena with array 0 allocated as an empty program.
// Callers typically replace it immediately via ReplaceProgram or by
// loading a scroll.
func New() *Arena {
	a := &Arena{}
	a.extend()

	id := a.popFree()
	if id != 0 {
		panic("arena: first allocation did not yield identifier 0")
	}

	a.slots[0].head = platter.Alloc(0)

	return a
}

// extend grows the slot table geometrically (doubling, minimum growth of
// 1) and pushes the newly created identifiers onto the free list in
// descending order, so the smallest fresh identifier is the first one
// popped — New issues ascending identifiers while the free list remains
// a simple stack.
func (a *Arena) extend() {
	grow := len(a.slots)
	if grow == 0 {
		grow = 1
	}

	base := len(a.slots)
	a.slots = append(a.slots, make([]slot, grow)...)

	for i := grow - 1; i >= 0; i-- {
		a.free = append(a.free, uint32(base+i))
	}
}

func (a *Arena) popFree() uint32 {
	if len(a.free) == 0 {
		a.extend()
	}

	id := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]

	return id
}

// NewArray allocates a new array of size platters, all zero-initialized,
// and returns its identifier. Identifier 0 is never returned.
func (a *Arena) NewArray(size uint32) uint32 {
	id := a.popFree()
	a.slots[id].head = platter.Alloc(size)

	return id
}

// Delete abandons the array named by id. If id is the current cow
// source, the cow marker is simply cleared — the buffer is still
// logically owned by array 0 — otherwise the buffer is freed and id is
// pushed onto the free list for reuse.
//
// Deleting identifier 0 or an already-freed identifier is undefined
// behavior per the UM specification; callers (the execution core) are
// expected to trap before calling Delete with such an id.
func (a *Arena) Delete(id uint32) {
	if id == a.cowSrc {
		a.cowSrc = 0
		return
	}

	platter.Free(a.slots[id].head)
	a.slots[id].head = nil
	a.free = append(a.free, id)
}

// ReplaceProgram loads the array named by id as the new program (array
// 0). If id is 0 this is a no-op. Otherwise array 0's slot becomes a
// shallow copy of id's slot (same buffer, same length), id is recorded
// as the new cow source, and any previously armed cow source is
// discarded without copying — its buffer remains live because the
// previous cow source's own slot still references it.
func (a *Arena) ReplaceProgram(id uint32) {
	if id == 0 {
		return
	}

	a.slots[0].head = a.slots[id].head
	a.cowSrc = id
	a.loads++
}

// Get returns the platter buffer backing id. If writing is true and a
// cow source is armed and id is 0 or the cow source itself, the
// copy-on-write is broken first: array 0 is given its own copy of the
// buffer and the cow marker is cleared. Reads never break the cow.
func (a *Arena) Get(id uint32, writing bool) []platter.Word {
	if writing && a.cowSrc != 0 && (id == 0 || id == a.cowSrc) {
		a.breakCow()
	}

	return a.slots[id].head
}

func (a *Arena) breakCow() {
	a.slots[0].head = platter.Dup(a.slots[0].head)
	a.cowSrc = 0
	a.cowBrks++
}

// Length returns the length, in platters, of the array named by id.
func (a *Arena) Length(id uint32) uint32 {
	return uint32(len(a.slots[id].head))
}

// Valid reports whether id currently names a live array.
func (a *Arena) Valid(id uint32) bool {
	return int(id) < len(a.slots) && !a.slots[id].free()
}

// Stats summarizes arena activity for the console "stat" command.
type Stats struct {
	Reserved  int // total slot-table capacity
	Active    int // live (non-free) identifiers
	Inactive  int // free identifiers available for reuse
	Loads     int // non-trivial ReplaceProgram calls
	CowBreaks int // copy-on-write breaks performed
}

// Stat reports current arena statistics.
func (a *Arena) Stat() Stats {
	return Stats{
		Reserved:  len(a.slots),
		Active:    len(a.slots) - len(a.free),
		Inactive:  len(a.free),
		Loads:     a.loads,
		CowBreaks: a.cowBrks,
	}
}

// ErrOutOfRange describes an array identifier outside the slot table.
// The execution core does not use it; its traps carry their own
// messages.
type ErrOutOfRange struct {
	ID  uint32
	Cap uint32
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("array identifier %d out of range (capacity %d)", e.ID, e.Cap)
}

// reset discards all arrays and free-list state. Used by snapshot
// loading, which always rebuilds the arena from scratch, including any
// array that was, at the moment of the snapshot, aliased as the cow
// source.
func (a *Arena) reset() {
	for i := range a.slots {
		if !a.slots[i].free() {
			platter.Free(a.slots[i].head)
		}
	}

	a.slots = nil
	a.free = nil
	a.cowSrc = 0
	a.loads = 0
	a.cowBrks = 0
}

// SaveState writes the arena's slot table in the wire format used by the
// snapshot engine: a signed 4-byte capacity, followed by one entry per
// slot — either a signed -1 (free) or a nonnegative length followed by
// that many platters. Aliased slots (array 0 and an armed cow source)
// are written independently and in full, exactly as the original does;
// no attempt is made to economize the on-disk representation of a cow
// pair.
func (a *Arena) SaveState(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(a.slots))); err != nil {
		return err
	}

	for _, s := range a.slots {
		if s.free() {
			if err := binary.Write(w, binary.LittleEndian, int32(-1)); err != nil {
				return err
			}

			continue
		}

		if err := binary.Write(w, binary.LittleEndian, int32(len(s.head))); err != nil {
			return err
		}

		if err := binary.Write(w, binary.LittleEndian, s.head); err != nil {
			return err
		}
	}

	return nil
}

// LoadState replaces the arena's entire contents with the slot table read
// from r, in the format written by SaveState. Every prior array is freed
// first, including any cow alias; the cow marker and statistics counters
// are reset to zero, matching the original's array_clear-then-reload
// behavior.
func (a *Arena) LoadState(r io.Reader) error {
	a.reset()

	var cap32 int32
	if err := binary.Read(r, binary.LittleEndian, &cap32); err != nil {
		return err
	}

	if cap32 < 0 {
		return fmt.Errorf("arena: negative slot-table capacity %d", cap32)
	}

	a.slots = make([]slot, cap32)

	for id := range a.slots {
		var length int32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return err
		}

		if length == -1 {
			a.free = append(a.free, uint32(id))
			continue
		}

		if length < 0 {
			return fmt.Errorf("arena: negative array length %d for identifier %d", length, id)
		}

		buf := platter.Alloc(uint32(length))
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return err
		}

		a.slots[id].head = buf
	}

	// Free identifiers were collected in ascending order; reverse them so
	// the smallest is on top of the stack, as extend arranges it.
	for i, j := 0, len(a.free)-1; i < j; i, j = i+1, j-1 {
		a.free[i], a.free[j] = a.free[j], a.free[i]
	}

	return nil
}
