// Package lsb hides bytes in the least-significant bit of 16-bit samples.
//
// Each sample carries one bit. Bytes are unpacked most-significant bit first,
// so byte i occupies samples [8i, 8i+8).
package lsb

import (
	"errors"
	"fmt"
)

var (
	ErrPayloadTooLarge = errors.New("payload too large for carrier")
	ErrShortCarrier    = errors.New("carrier has too few samples")
)

// CapacityError reports a payload that needs more bits than the carrier has samples.
type CapacityError struct {
	Bits     int
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("payload needs %d bits but carrier holds %d", e.Bits, e.Capacity)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrPayloadTooLarge
}

var _ error = (*CapacityError)(nil)

// Capacity returns the number of whole bytes a carrier of n samples can hold.
func Capacity(samples int) int {
	return samples / 8
}

// Embed returns a copy of samples whose LSBs carry payload. Samples past the
// end of the payload have their LSB cleared.
func Embed(samples []int16, payload []byte) ([]int16, error) {
	bits := len(payload) * 8
	if bits > len(samples) {
		return nil, &CapacityError{Bits: bits, Capacity: len(samples)}
	}

	out := make([]int16, len(samples))
	for i, s := range samples {
		var bit int16
		if i < bits {
			bit = int16(payload[i/8]>>(7-uint(i%8))) & 1
		}
		out[i] = s&^1 | bit
	}
	return out, nil
}

// Extract reads n bytes from the LSBs of the first n*8 samples.
func Extract(samples []int16, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative byte count %d", n)
	}
	if n*8 > len(samples) {
		return nil, fmt.Errorf("%w: need %d samples for %d bytes, have %d", ErrShortCarrier, n*8, n, len(samples))
	}

	out := make([]byte, n)
	for i := range n * 8 {
		out[i/8] |= byte(samples[i]&1) << (7 - uint(i%8))
	}
	return out, nil
}
