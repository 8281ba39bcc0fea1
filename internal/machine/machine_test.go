package machine_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nya3jp/umix/internal/machine"
	"github.com/nya3jp/umix/internal/snapshot"
)

func orthography(reg, value uint32) uint32 {
	return 13<<28 | reg<<25 | value
}

func op(code, a, b, c uint32) uint32 {
	return code<<28 | a<<6 | b<<3 | c
}

func TestLoadProgramThenRunProducesOutput(t *testing.T) {
	var out bytes.Buffer
	m := machine.New(strings.NewReader(""), &out)

	m.LoadProgram([]uint32{
		orthography(1, 'H'),
		op(10, 0, 0, 1),
		0x70000000,
	})

	require.NoError(t, m.Run(nil))
	assert.Equal(t, "H", out.String())
	assert.Equal(t, uint64(3), m.Stat().Instructions)
}

func TestSaveLoadRoundTripPreservesRunState(t *testing.T) {
	var out bytes.Buffer
	m := machine.New(strings.NewReader(""), &out)

	m.LoadProgram([]uint32{
		orthography(1, 'X'),
		op(10, 0, 0, 1),
		orthography(1, 'Y'),
		op(10, 0, 0, 1),
		0x70000000,
	})

	_, err := m.Core.Step()
	require.NoError(t, err)
	_, err = m.Core.Step()
	require.NoError(t, err)

	var snap bytes.Buffer
	require.NoError(t, m.Save(&snap))

	var out2 bytes.Buffer
	restored := machine.New(strings.NewReader(""), &out2)
	require.NoError(t, restored.Load(&snap))

	require.NoError(t, restored.Run(nil))
	assert.Equal(t, "Y", out2.String())
	assert.Equal(t, m.Stat().Arena.Reserved, restored.Stat().Arena.Reserved)
}

func TestLoadBadSnapshotReturnsErrBadMagic(t *testing.T) {
	var out bytes.Buffer
	m := machine.New(strings.NewReader(""), &out)

	err := m.Load(strings.NewReader("nope"))
	require.ErrorIs(t, err, snapshot.ErrBadMagic)
}
