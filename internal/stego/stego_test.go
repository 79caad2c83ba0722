package stego_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/glizzus/sound-stego/internal/crypt"
	"github.com/glizzus/sound-stego/internal/stego"
	"github.com/glizzus/sound-stego/internal/trailer"
	"github.com/glizzus/sound-stego/internal/wav"
	"github.com/google/go-cmp/cmp"
)

var key16 = make([]byte, 16)

func sineLikeCarrier(n, channels int) *wav.Audio {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(i*7919) ^ int16(i>>3)
	}
	return &wav.Audio{Channels: channels, SampleRate: 44100, Samples: samples}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		carrier  *wav.Audio
		secret   []byte
		keyBytes int
	}{
		{name: "empty secret", carrier: sineLikeCarrier(1000, 1), secret: []byte{}, keyBytes: 16},
		{name: "text", carrier: sineLikeCarrier(4000, 2), secret: []byte("meet me at the old mill"), keyBytes: 16},
		{name: "binary with aes-192", carrier: sineLikeCarrier(8000, 2), secret: []byte{0x89, 'P', 'N', 'G', 0, 0, 0xFF}, keyBytes: 24},
		{name: "aes-256", carrier: sineLikeCarrier(20000, 1), secret: bytes.Repeat([]byte("x"), 1000), keyBytes: 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := bytes.Repeat([]byte{0x5A}, tt.keyBytes)
			container, err := stego.Embed(tt.carrier, tt.secret, key)
			if err != nil {
				t.Fatalf("Embed() error: %v", err)
			}

			got, err := stego.Extract(container, key)
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if diff := cmp.Diff(tt.secret, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmbedPreservesFormat(t *testing.T) {
	carrier := &wav.Audio{Channels: 2, SampleRate: 22050, Samples: make([]int16, 600)}
	original := append([]int16(nil), carrier.Samples...)

	container, err := stego.Embed(carrier, []byte("hi"), key16)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	body, _, err := trailer.Split(container)
	if err != nil {
		t.Fatalf("Split() error: %v", err)
	}
	decoded, err := wav.Decode(body)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if decoded.Channels != 2 || decoded.SampleRate != 22050 || len(decoded.Samples) != 600 {
		t.Errorf("format changed: channels=%d rate=%d samples=%d", decoded.Channels, decoded.SampleRate, len(decoded.Samples))
	}
	if diff := cmp.Diff(original, carrier.Samples); diff != "" {
		t.Errorf("carrier mutated (-want +got):\n%s", diff)
	}
}

// TestConcreteScenario embeds 0x01 into 1000 silent samples under a fixed IV.
func TestConcreteScenario(t *testing.T) {
	carrier := &wav.Audio{Channels: 1, SampleRate: 8000, Samples: make([]int16, 1000)}
	p := stego.Pipeline{Cipher: crypt.Cipher{Rand: bytes.NewReader(make([]byte, crypt.BlockSize))}}

	container, err := p.Embed(carrier, []byte{0x01}, key16)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	n, err := trailer.ReadLength(container)
	if err != nil {
		t.Fatalf("ReadLength() error: %v", err)
	}
	if n != 32 {
		t.Errorf("trailer length = %d, want 32", n)
	}

	expectedBlob, err := crypt.Cipher{Rand: bytes.NewReader(make([]byte, crypt.BlockSize))}.Encrypt([]byte{0x01}, key16)
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	body, _, _ := trailer.Split(container)
	decoded, err := wav.Decode(body)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	for i, s := range decoded.Samples {
		var want int16
		if i < len(expectedBlob)*8 {
			want = int16(expectedBlob[i/8]>>(7-uint(i%8))) & 1
		}
		if s != want {
			t.Fatalf("sample %d = %d, want %d", i, s, want)
		}
	}

	got, err := p.Extract(container, key16)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if diff := cmp.Diff([]byte{0x01}, got); diff != "" {
		t.Errorf("Extract() mismatch (-want +got):\n%s", diff)
	}
}

func TestCapacityBoundary(t *testing.T) {
	// A 15-byte secret encrypts to 32 bytes: 256 bits.
	secret := bytes.Repeat([]byte{'s'}, 15)

	t.Run("exact fit succeeds", func(t *testing.T) {
		carrier := &wav.Audio{Channels: 1, SampleRate: 8000, Samples: make([]int16, 256)}
		container, err := stego.Embed(carrier, secret, key16)
		if err != nil {
			t.Fatalf("Embed() error: %v", err)
		}
		got, err := stego.Extract(container, key16)
		if err != nil {
			t.Fatalf("Extract() error: %v", err)
		}
		if !bytes.Equal(secret, got) {
			t.Errorf("Extract() = %q, want %q", got, secret)
		}
	})

	t.Run("one bit over fails", func(t *testing.T) {
		carrier := &wav.Audio{Channels: 1, SampleRate: 8000, Samples: make([]int16, 255)}
		_, err := stego.Embed(carrier, secret, key16)
		if stego.KindOf(err) != stego.KindPayloadTooLarge {
			t.Errorf("expected payload_too_large, got %v (%v)", stego.KindOf(err), err)
		}
	})
}

func TestMaxSecretSize(t *testing.T) {
	tests := []struct {
		samples int
		want    int
	}{
		{samples: 0, want: -1},
		{samples: 255, want: -1},
		{samples: 256, want: 15},
		{samples: 383, want: 15},
		{samples: 384, want: 31},
		{samples: 1000, want: 95},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.samples), func(t *testing.T) {
			got := stego.MaxSecretSize(tt.samples)
			if got != tt.want {
				t.Fatalf("MaxSecretSize(%d) = %d, want %d", tt.samples, got, tt.want)
			}
			if got < 0 {
				return
			}
			carrier := &wav.Audio{Channels: 1, SampleRate: 8000, Samples: make([]int16, tt.samples)}
			if _, err := stego.Embed(carrier, make([]byte, got), key16); err != nil {
				t.Errorf("secret of MaxSecretSize bytes did not fit: %v", err)
			}
			if _, err := stego.Embed(carrier, make([]byte, got+1), key16); stego.KindOf(err) != stego.KindPayloadTooLarge {
				t.Errorf("secret of MaxSecretSize+1 bytes: expected payload_too_large, got %v", err)
			}
		})
	}
}

func TestExtractErrors(t *testing.T) {
	carrier := sineLikeCarrier(2000, 1)
	container, err := stego.Embed(carrier, []byte("payload"), key16)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	hugeTrailer := trailer.AppendLength(append([]byte(nil), container[:len(container)-trailer.Size]...), 1<<20)

	tests := []struct {
		name      string
		container []byte
		key       []byte
		want      stego.Kind
	}{
		{name: "trailer removed", container: container[:len(container)-trailer.Size], key: key16, want: stego.KindTruncatedContainer},
		{name: "three bytes", container: []byte{1, 2, 3}, key: key16, want: stego.KindTruncatedContainer},
		{name: "length beyond carrier", container: hugeTrailer, key: key16, want: stego.KindTruncatedContainer},
		{name: "not a wav", container: []byte("this is not a wav file at all"), key: key16, want: stego.KindMalformedContainer},
		{name: "bad key length", container: container, key: []byte("short"), want: stego.KindInvalidKeyLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stego.Extract(tt.container, tt.key)
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := stego.KindOf(err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v (%v)", got, tt.want, err)
			}
		})
	}
}

func TestExtractWrongKey(t *testing.T) {
	p := stego.Pipeline{Cipher: crypt.Cipher{Rand: bytes.NewReader(make([]byte, crypt.BlockSize))}}
	container, err := p.Embed(sineLikeCarrier(2000, 1), []byte("a fixed payload"), key16)
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	rejected := 0
	for i := 1; i <= 32; i++ {
		_, err := stego.Extract(container, bytes.Repeat([]byte{byte(i)}, 16))
		if stego.KindOf(err) == stego.KindPaddingInvalid {
			rejected++
		}
	}
	if rejected < 28 {
		t.Errorf("only %d of 32 wrong keys were rejected", rejected)
	}
}

func TestEmbedInvalidKey(t *testing.T) {
	_, err := stego.Embed(sineLikeCarrier(1000, 1), []byte("x"), []byte("not-a-valid-key"))
	if stego.KindOf(err) != stego.KindInvalidKeyLength {
		t.Errorf("expected invalid_key_length, got %v", err)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want stego.Kind
	}{
		{err: nil, want: stego.KindUnknown},
		{err: errors.New("boom"), want: stego.KindUnknown},
		{err: fmt.Errorf("wrapped: %w", crypt.ErrPaddingInvalid), want: stego.KindPaddingInvalid},
		{err: &wav.SampleWidthError{Bits: 8}, want: stego.KindUnsupportedSampleWidth},
		{err: fmt.Errorf("x: %w", trailer.ErrTruncatedContainer), want: stego.KindTruncatedContainer},
	}

	for _, tt := range tests {
		if got := stego.KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
	if stego.KindPaddingInvalid.String() != "padding_invalid" {
		t.Errorf("unexpected String(): %s", stego.KindPaddingInvalid)
	}
}
