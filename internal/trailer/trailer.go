// Package trailer frames the hidden payload length after a serialized carrier.
//
// The trailer is a 4-byte little-endian uint32 appended after the WAV
// container is complete, so it lies outside the declared data chunk and the
// sample LSB plane.
package trailer

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Size is the trailer length in bytes.
const Size = 4

var ErrTruncatedContainer = errors.New("container too short for length trailer")

// AppendLength appends the trailer for n to container and returns the extended slice.
func AppendLength(container []byte, n uint32) []byte {
	return binary.LittleEndian.AppendUint32(container, n)
}

// ReadLength decodes the trailer from the last 4 bytes of container.
func ReadLength(container []byte) (uint32, error) {
	if len(container) < Size {
		return 0, fmt.Errorf("%w: got %d bytes", ErrTruncatedContainer, len(container))
	}
	return binary.LittleEndian.Uint32(container[len(container)-Size:]), nil
}

// Split separates container into the body preceding the trailer and the
// length it encodes.
func Split(container []byte) ([]byte, uint32, error) {
	n, err := ReadLength(container)
	if err != nil {
		return nil, 0, err
	}
	return container[:len(container)-Size], n, nil
}
