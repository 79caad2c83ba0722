// Package crypt encrypts secret payloads before they are hidden in audio.
//
// Blobs are laid out as [16-byte IV][AES-CBC ciphertext]. The plaintext is
// PKCS#7 padded, so the ciphertext is always at least one block long.
package crypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// BlockSize is the AES block size, which is also the IV length.
const BlockSize = aes.BlockSize

var (
	ErrInvalidKeyLength = errors.New("invalid key length")
	ErrPaddingInvalid   = errors.New("invalid padding")
)

// KeyLengthError reports a key that is not 16, 24 or 32 bytes long.
type KeyLengthError struct {
	Length int
}

func (e *KeyLengthError) Error() string {
	return fmt.Sprintf("invalid key length %d: must be 16, 24 or 32 bytes", e.Length)
}

func (e *KeyLengthError) Is(target error) bool {
	return target == ErrInvalidKeyLength
}

var _ error = (*KeyLengthError)(nil)

// Cipher encrypts and decrypts blobs. The zero value draws IVs from
// crypto/rand.
type Cipher struct {
	// Rand is the IV source. Nil means crypto/rand.Reader.
	Rand io.Reader
}

func newBlock(key []byte) (cipher.Block, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, &KeyLengthError{Length: len(key)}
	}
	return aes.NewCipher(key)
}

// Encrypt pads plaintext, encrypts it under a fresh IV and returns IV || ciphertext.
func (c Cipher) Encrypt(plaintext, key []byte) ([]byte, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	src := c.Rand
	if src == nil {
		src = rand.Reader
	}

	padded := pad(plaintext)
	blob := make([]byte, BlockSize+len(padded))
	iv := blob[:BlockSize]
	if _, err := io.ReadFull(src, iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(blob[BlockSize:], padded)
	return blob, nil
}

// Decrypt splits the IV from blob, decrypts and strips the padding.
// A wrong key is usually reported as ErrPaddingInvalid; this is not an
// integrity check.
func (c Cipher) Decrypt(blob, key []byte) ([]byte, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	if len(blob) < 2*BlockSize || len(blob)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: blob length %d is not iv plus whole blocks", ErrPaddingInvalid, len(blob))
	}

	iv := blob[:BlockSize]
	plaintext := make([]byte, len(blob)-BlockSize)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, blob[BlockSize:])

	return unpad(plaintext)
}

// Encrypt encrypts with the default Cipher.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	return Cipher{}.Encrypt(plaintext, key)
}

// Decrypt decrypts with the default Cipher.
func Decrypt(blob, key []byte) ([]byte, error) {
	return Cipher{}.Decrypt(blob, key)
}

// Overhead returns the blob length Encrypt produces for an n-byte plaintext.
func Overhead(n int) int {
	return BlockSize + (n/BlockSize+1)*BlockSize
}

func pad(b []byte) []byte {
	n := BlockSize - len(b)%BlockSize
	out := make([]byte, len(b), len(b)+n)
	copy(out, b)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%BlockSize != 0 {
		return nil, ErrPaddingInvalid
	}
	n := int(b[len(b)-1])
	if n == 0 || n > BlockSize {
		return nil, ErrPaddingInvalid
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, ErrPaddingInvalid
		}
	}
	return b[:len(b)-n], nil
}
