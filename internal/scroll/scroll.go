// Package scroll reads a universal machine program image: a raw
// sequence of 32-bit platters in big-endian byte order.
package scroll

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Load reads every platter from r, which must contain a whole number of
// 4-byte big-endian words, and returns them in host order.
func Load(r io.Reader) ([]uint32, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("scroll: reading: %w", err)
	}

	if len(data)%4 != 0 {
		return nil, fmt.Errorf("scroll: file size %d is not a multiple of 4", len(data))
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.BigEndian.Uint32(data[i*4:])
	}

	return words, nil
}
