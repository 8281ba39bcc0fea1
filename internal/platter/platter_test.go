package platter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nya3jp/umix/internal/platter"
)

func TestAllocZeroInitialized(t *testing.T) {
	buf := platter.Alloc(8)
	require.Len(t, buf, 8)

	for i, w := range buf {
		assert.Zerof(t, w, "platter %d not zero", i)
	}
}

func TestAllocZeroLength(t *testing.T) {
	buf := platter.Alloc(0)
	assert.Len(t, buf, 0)
}

func TestDupCopiesContents(t *testing.T) {
	src := platter.Alloc(4)
	src[0], src[3] = 0xCAFEBABE, 42

	dst := platter.Dup(src)
	require.Equal(t, src, dst)

	dst[0] = 0
	assert.NotEqual(t, src[0], dst[0], "Dup must not alias the source buffer")
}

func TestInUseTracksAllocAndFree(t *testing.T) {
	before := platter.InUse()

	buf := platter.Alloc(16)
	assert.Equal(t, before+16, platter.InUse())

	platter.Free(buf)
	assert.Equal(t, before, platter.InUse())
}
