package scroll_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nya3jp/umix/internal/scroll"
)

func TestLoadBigEndianWords(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x01, 0xFF, 0x00, 0x00, 0x02}

	words, err := scroll.Load(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, words, 2)

	assert.Equal(t, uint32(1), words[0])
	assert.Equal(t, uint32(0xFF000002), words[1])
}

func TestLoadRejectsTruncatedFile(t *testing.T) {
	_, err := scroll.Load(bytes.NewReader([]byte{0x00, 0x01, 0x02}))
	require.Error(t, err)
}

func TestLoadEmptyFileYieldsEmptyProgram(t *testing.T) {
	words, err := scroll.Load(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Len(t, words, 0)
}
