package termio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nya3jp/umix/internal/termio"
)

func TestPutWritesAndBacklogs(t *testing.T) {
	var out bytes.Buffer
	m := termio.New(strings.NewReader(""), &out)

	m.Put('A')
	m.Put('B')

	assert.Equal(t, "AB", out.String())

	out.Reset()
	require.NoError(t, m.PrintBacklog())
	assert.Contains(t, out.String(), "AB")
}

func TestGetReadsFromPasteBeforeHost(t *testing.T) {
	var out bytes.Buffer
	m := termio.New(strings.NewReader("Z"), &out)
	m.FeedPaste([]byte("XY"))

	assert.Equal(t, uint32('X'), m.Get())
	assert.Equal(t, uint32('Y'), m.Get())
	assert.Equal(t, uint32('Z'), m.Get())

	// paste bytes are echoed to host output as if typed.
	assert.Equal(t, "XY", out.String())
}

func TestGetEscapeByteInvokesHookAndIsNotReturned(t *testing.T) {
	var out bytes.Buffer
	m := termio.New(strings.NewReader("!A"), &out)

	var hookCalled bool
	m.Hook = func() { hookCalled = true }

	got := m.Get()

	assert.True(t, hookCalled)
	assert.Equal(t, uint32('A'), got)
}

func TestGetEOFReturnsEOFWord(t *testing.T) {
	var out bytes.Buffer
	m := termio.New(strings.NewReader(""), &out)

	assert.Equal(t, termio.EOFWord, m.Get())
}

func TestFeedPasteTruncatesSilentlyAtCapacity(t *testing.T) {
	var out bytes.Buffer
	m := termio.New(strings.NewReader(""), &out)

	big := bytes.Repeat([]byte{'x'}, termio.PasteCapacity+10)
	m.FeedPaste(big)

	// Draining everything should produce exactly PasteCapacity bytes
	// with no error or panic.
	for i := 0; i < termio.PasteCapacity; i++ {
		assert.Equal(t, uint32('x'), m.Get())
	}
}

func TestFeedPasteKeepsHeadOnOverflow(t *testing.T) {
	var out bytes.Buffer
	m := termio.New(strings.NewReader(""), &out)

	data := append(bytes.Repeat([]byte{'h'}, termio.PasteCapacity), []byte("TAIL")...)
	m.FeedPaste(data)

	// The bytes that fit are the head of the input; the overflowing
	// "TAIL" suffix is dropped, matching the original's io_feed_paste.
	assert.Equal(t, uint32('h'), m.Get())
}

func TestBacklogWrapsAndPrintsOldestFirst(t *testing.T) {
	var out bytes.Buffer
	m := termio.New(strings.NewReader(""), &out)

	for i := 0; i < termio.BacklogCapacity+3; i++ {
		m.Put(byte('a' + i%26))
	}

	out.Reset()
	require.NoError(t, m.PrintBacklog())

	assert.Len(t, out.String(), termio.BacklogCapacity)
	// The first three puts ('a'..'c') were overwritten; the oldest kept
	// byte is put #3 ('d') and the newest is put #4098 ('q').
	assert.Equal(t, byte('d'), out.String()[0])
	assert.Equal(t, byte('q'), out.String()[termio.BacklogCapacity-1])
}

func TestClearResetsBothRings(t *testing.T) {
	var out bytes.Buffer
	m := termio.New(strings.NewReader(""), &out)

	m.Put('a')
	m.FeedPaste([]byte("b"))
	m.Clear()

	out.Reset()
	require.NoError(t, m.PrintBacklog())
	assert.Equal(t, strings.Repeat("\x00", termio.BacklogCapacity), out.String())
	// The queued paste byte is gone too, so Get falls through to the
	// empty host input.
	assert.Equal(t, termio.EOFWord, m.Get())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	var out bytes.Buffer
	m := termio.New(strings.NewReader(""), &out)

	m.Put('h')
	m.Put('i')
	m.FeedPaste([]byte("pending"))

	var snap bytes.Buffer
	require.NoError(t, m.SaveState(&snap))

	var out2 bytes.Buffer
	restored := termio.New(strings.NewReader(""), &out2)
	require.NoError(t, restored.LoadState(&snap))

	out.Reset()
	out2.Reset()
	require.NoError(t, m.PrintBacklog())
	require.NoError(t, restored.PrintBacklog())
	assert.Equal(t, out.String(), out2.String())

	assert.Equal(t, uint32('p'), restored.Get())
}
