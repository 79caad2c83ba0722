// Package stego hides encrypted payloads in 16-bit PCM audio and recovers them.
//
// Embed runs crypt -> lsb -> wav -> trailer. Extract runs the same stages in
// reverse. Both hold the whole container in memory and keep no state between
// calls, so they are safe for concurrent use.
package stego

import (
	"fmt"
	"math"

	"github.com/glizzus/sound-stego/internal/crypt"
	"github.com/glizzus/sound-stego/internal/lsb"
	"github.com/glizzus/sound-stego/internal/trailer"
	"github.com/glizzus/sound-stego/internal/wav"
)

// Pipeline wires the cipher into the embed and extract stages.
// The zero value draws IVs from crypto/rand.
type Pipeline struct {
	Cipher crypt.Cipher
}

// Embed encrypts secret, hides it in the carrier's sample LSBs and returns a
// WAV container followed by the length trailer. The carrier is not modified.
func (p Pipeline) Embed(carrier *wav.Audio, secret, key []byte) ([]byte, error) {
	blob, err := p.Cipher.Encrypt(secret, key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt secret: %w", err)
	}
	if uint64(len(blob)) > math.MaxUint32 {
		return nil, &lsb.CapacityError{Bits: len(blob) * 8, Capacity: len(carrier.Samples)}
	}

	samples, err := lsb.Embed(carrier.Samples, blob)
	if err != nil {
		return nil, fmt.Errorf("failed to embed ciphertext: %w", err)
	}

	out := &wav.Audio{
		Channels:   carrier.Channels,
		SampleRate: carrier.SampleRate,
		Samples:    samples,
	}
	return trailer.AppendLength(out.Bytes(), uint32(len(blob))), nil
}

// Extract reads the length trailer, pulls that many bytes out of the sample
// LSBs and decrypts them.
func (p Pipeline) Extract(container, key []byte) ([]byte, error) {
	body, n, err := trailer.Split(container)
	if err != nil {
		return nil, err
	}

	audio, err := wav.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode carrier: %w", err)
	}

	if uint64(n)*8 > uint64(len(audio.Samples)) {
		return nil, fmt.Errorf("%w: trailer claims %d bytes, carrier holds %d", lsb.ErrShortCarrier, n, lsb.Capacity(len(audio.Samples)))
	}

	blob, err := lsb.Extract(audio.Samples, int(n))
	if err != nil {
		return nil, fmt.Errorf("failed to extract ciphertext: %w", err)
	}

	secret, err := p.Cipher.Decrypt(blob, key)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt secret: %w", err)
	}
	return secret, nil
}

// Embed runs the default Pipeline.
func Embed(carrier *wav.Audio, secret, key []byte) ([]byte, error) {
	return Pipeline{}.Embed(carrier, secret, key)
}

// Extract runs the default Pipeline.
func Extract(container, key []byte) ([]byte, error) {
	return Pipeline{}.Extract(container, key)
}

// MaxSecretSize returns the largest plaintext that fits in a carrier of the
// given sample count, or -1 if not even an empty secret fits.
func MaxSecretSize(samples int) int {
	blocks := lsb.Capacity(samples) / crypt.BlockSize
	// One block is the IV, and padding always adds at least one byte.
	if blocks < 2 {
		return -1
	}
	return (blocks-1)*crypt.BlockSize - 1
}
