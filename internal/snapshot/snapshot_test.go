package snapshot_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nya3jp/umix/internal/arena"
	"github.com/nya3jp/umix/internal/core"
	"github.com/nya3jp/umix/internal/snapshot"
	"github.com/nya3jp/umix/internal/termio"
)

func TestMagicPrefix(t *testing.T) {
	a := arena.New()
	var out bytes.Buffer
	med := termio.New(strings.NewReader(""), &out)
	c := core.New(a, med)

	var buf bytes.Buffer
	require.NoError(t, snapshot.Save(&buf, c, a, med))

	assert.Equal(t, "UMX\x01", buf.String()[:4])
}

func TestSaveLoadRoundTripIsObservationallyIdentical(t *testing.T) {
	a := arena.New()
	var out bytes.Buffer
	med := termio.New(strings.NewReader(""), &out)
	c := core.New(a, med)

	id := a.NewArray(4)
	a.Get(id, true)[2] = 0xDEADBEEF
	a.ReplaceProgram(id)
	c.PC = 2
	c.Regs[3] = 77
	med.Put('x')
	med.FeedPaste([]byte("abc"))

	var buf bytes.Buffer
	require.NoError(t, snapshot.Save(&buf, c, a, med))

	a2 := arena.New()
	var out2 bytes.Buffer
	med2 := termio.New(strings.NewReader(""), &out2)
	c2 := core.New(a2, med2)

	require.NoError(t, snapshot.Load(&buf, c2, a2, med2))

	assert.Equal(t, c.PC, c2.PC)
	assert.Equal(t, c.Regs, c2.Regs)
	assert.Equal(t, a.Get(0, false), a2.Get(0, false))

	assert.Equal(t, uint32('a'), med2.Get())
}

func TestLoadRejectsBadMagic(t *testing.T) {
	a := arena.New()
	var out bytes.Buffer
	med := termio.New(strings.NewReader(""), &out)
	c := core.New(a, med)

	bad := bytes.NewReader([]byte("NOPE and then some trailing bytes"))

	err := snapshot.Load(bad, c, a, med)
	require.ErrorIs(t, err, snapshot.ErrBadMagic)
}
