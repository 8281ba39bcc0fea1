// Package platter implements the universal machine's lowest-level memory
// primitive: allocation, release, and duplication of zero-initialized
// buffers of 32-bit words.
package platter

// Word is a single platter: a 32-bit word. All arithmetic on it is modulo
// 2^32, which is exactly what Go's uint32 already gives us for free.
type Word = uint32

// used tracks the number of platters currently held across every buffer
// this package has handed out, for the "stat" console command. The
// interpreter is strictly single-threaded (spec Non-goals), so a plain
// counter is enough.
var used int64

// Alloc returns a zero-initialized buffer of n platters. Allocation
// failure (out of memory) is fatal and unrecoverable, matching the
// original's calloc-or-die policy; Go's runtime already panics on OOM, so
// there is no separate error path to thread through callers.
func Alloc(n uint32) []Word {
	buf := make([]Word, n)
	used += int64(n)

	return buf
}

// Free releases a buffer previously returned by Alloc or Dup. It is the
// caller's responsibility not to use the buffer afterward.
func Free(buf []Word) {
	used -= int64(len(buf))
}

// Dup allocates a new buffer of the same length as src and copies its
// contents into it.
func Dup(src []Word) []Word {
	dst := Alloc(uint32(len(src)))
	copy(dst, src)

	return dst
}

// InUse reports the number of platters currently allocated across all
// live buffers.
func InUse() int64 {
	return used
}
