package crypt_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/glizzus/sound-stego/internal/crypt"
	"github.com/google/go-cmp/cmp"
)

var zeroKey = make([]byte, 16)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
		keyLen    int
	}{
		{name: "empty plaintext", plaintext: []byte{}, keyLen: 16},
		{name: "single byte", plaintext: []byte{0x01}, keyLen: 16},
		{name: "exactly one block", plaintext: bytes.Repeat([]byte{'a'}, 16), keyLen: 24},
		{name: "multiple blocks", plaintext: []byte("the quick brown fox jumps over the lazy dog"), keyLen: 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := bytes.Repeat([]byte{0x42}, tt.keyLen)
			blob, err := crypt.Encrypt(tt.plaintext, key)
			if err != nil {
				t.Fatalf("Encrypt() error: %v", err)
			}
			if len(blob) != crypt.Overhead(len(tt.plaintext)) {
				t.Errorf("len(blob) = %d, want %d", len(blob), crypt.Overhead(len(tt.plaintext)))
			}
			if (len(blob)-crypt.BlockSize)%crypt.BlockSize != 0 {
				t.Errorf("ciphertext is not block aligned: %d", len(blob))
			}

			got, err := crypt.Decrypt(blob, key)
			if err != nil {
				t.Fatalf("Decrypt() error: %v", err)
			}
			if diff := cmp.Diff(tt.plaintext, got); diff != "" {
				t.Errorf("Decrypt() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncryptInvalidKeyLength(t *testing.T) {
	for _, n := range []int{0, 1, 15, 17, 31, 33, 64} {
		_, err := crypt.Encrypt([]byte("secret"), make([]byte, n))
		if !errors.Is(err, crypt.ErrInvalidKeyLength) {
			t.Errorf("key length %d: expected ErrInvalidKeyLength, got %v", n, err)
		}
		var keyErr *crypt.KeyLengthError
		if !errors.As(err, &keyErr) || keyErr.Length != n {
			t.Errorf("key length %d: expected KeyLengthError{%d}, got %v", n, n, err)
		}
	}
}

func TestDecryptInvalidKeyLength(t *testing.T) {
	_, err := crypt.Decrypt(make([]byte, 32), make([]byte, 10))
	if !errors.Is(err, crypt.ErrInvalidKeyLength) {
		t.Errorf("expected ErrInvalidKeyLength, got %v", err)
	}
}

func TestEncryptFreshIV(t *testing.T) {
	plaintext := []byte("same plaintext")
	first, err := crypt.Encrypt(plaintext, zeroKey)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	second, err := crypt.Encrypt(plaintext, zeroKey)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	if bytes.Equal(first[:crypt.BlockSize], second[:crypt.BlockSize]) {
		t.Errorf("expected distinct IVs, both were %x", first[:crypt.BlockSize])
	}
	if bytes.Equal(first, second) {
		t.Errorf("expected distinct blobs for repeated encryption")
	}
}

func TestEncryptUsesIVSource(t *testing.T) {
	iv := bytes.Repeat([]byte{0xAB}, crypt.BlockSize)
	c := crypt.Cipher{Rand: bytes.NewReader(iv)}

	blob, err := c.Encrypt([]byte{0x01}, zeroKey)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	if diff := cmp.Diff(iv, blob[:crypt.BlockSize]); diff != "" {
		t.Errorf("IV mismatch (-want +got):\n%s", diff)
	}
	if len(blob) != 32 {
		t.Errorf("len(blob) = %d, want 32", len(blob))
	}
}

func TestEncryptShortIVSource(t *testing.T) {
	c := crypt.Cipher{Rand: bytes.NewReader([]byte{1, 2, 3})}
	if _, err := c.Encrypt([]byte("x"), zeroKey); err == nil {
		t.Errorf("expected error from exhausted IV source")
	}
}

func TestDecryptWrongKey(t *testing.T) {
	c := crypt.Cipher{Rand: bytes.NewReader(make([]byte, crypt.BlockSize))}
	plaintext := []byte("attack at dawn")
	blob, err := c.Encrypt(plaintext, zeroKey)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	// A wrong key can still produce valid-looking padding by chance, so only
	// the overwhelming majority of keys is required to fail.
	const attempts = 64
	rejected := 0
	for i := 1; i <= attempts; i++ {
		wrongKey := bytes.Repeat([]byte{byte(i)}, 16)
		got, err := crypt.Decrypt(blob, wrongKey)
		if errors.Is(err, crypt.ErrPaddingInvalid) {
			rejected++
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for key %d: %v", i, err)
		}
		if bytes.Equal(got, plaintext) {
			t.Fatalf("key %d recovered the plaintext", i)
		}
	}
	if rejected < attempts-8 {
		t.Errorf("only %d of %d wrong keys were rejected", rejected, attempts)
	}
}

func TestDecryptMalformedBlob(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{name: "empty", blob: nil},
		{name: "iv only", blob: make([]byte, 16)},
		{name: "not block aligned", blob: make([]byte, 40)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := crypt.Cipher{}.Decrypt(tt.blob, zeroKey)
			if !errors.Is(err, crypt.ErrPaddingInvalid) {
				t.Errorf("expected ErrPaddingInvalid, got %v", err)
			}
		})
	}
}

func TestDecryptTruncatedBlob(t *testing.T) {
	blob, err := crypt.Encrypt(bytes.Repeat([]byte{'z'}, 40), zeroKey)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}
	_, err = crypt.Decrypt(blob[:len(blob)-1], zeroKey)
	if !errors.Is(err, crypt.ErrPaddingInvalid) {
		t.Errorf("expected ErrPaddingInvalid, got %v", err)
	}
}
