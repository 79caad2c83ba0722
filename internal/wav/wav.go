// Package wav reads and writes 16-bit PCM RIFF/WAVE containers.
//
// Decode walks the RIFF chunk list and ignores anything after the data chunk,
// which is where the length trailer lives. Bytes encodes a canonical 44-byte
// header followed by little-endian samples.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/glizzus/sound-stego/internal/util"
)

const (
	// HeaderSize is the size of the canonical header written by Bytes.
	HeaderSize = 44

	// BitsPerSample is the only sample width this package handles.
	BitsPerSample = 16

	formatPCM        = 1
	formatExtensible = 0xFFFE

	// Streaming encoders that cannot seek back leave one of these in the
	// data chunk size field.
	unknownSizeZero = 0
	unknownSizeMax  = 0xFFFFFFFF
)

var (
	ErrMalformed              = errors.New("malformed wav container")
	ErrTruncated              = errors.New("truncated wav container")
	ErrUnsupportedSampleWidth = errors.New("unsupported sample width")
)

// SampleWidthError reports a PCM stream whose sample width is not 16 bits.
type SampleWidthError struct {
	Bits int
}

func (e *SampleWidthError) Error() string {
	return fmt.Sprintf("unsupported sample width: %d bits, want %d", e.Bits, BitsPerSample)
}

func (e *SampleWidthError) Is(target error) bool {
	return target == ErrUnsupportedSampleWidth
}

var _ error = (*SampleWidthError)(nil)

// Audio is decoded PCM audio. Samples are interleaved by channel.
type Audio struct {
	Channels   int
	SampleRate int
	Samples    []int16
}

// Frames returns the number of sample frames, one sample per channel each.
func (a *Audio) Frames() int {
	if a.Channels <= 0 {
		return 0
	}
	return len(a.Samples) / a.Channels
}

// Duration returns the playback length.
func (a *Audio) Duration() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(a.Frames()) * time.Second / time.Duration(a.SampleRate)
}

type chunk struct {
	id   string
	body []byte
}

// readChunks walks the chunk list. A zero data size only means "until the end"
// when the RIFF size is also a placeholder; otherwise the data chunk is empty.
func readChunks(b []byte, streamed bool) ([]chunk, error) {
	var chunks []chunk
	for len(b) >= 8 {
		id := string(b[0:4])
		size := binary.LittleEndian.Uint32(b[4:8])
		b = b[8:]

		if uint64(size) > uint64(len(b)) {
			if id != "data" {
				return nil, fmt.Errorf("%w: %q chunk declares %d bytes, %d remain", ErrTruncated, id, size, len(b))
			}
			if size != unknownSizeZero && size != unknownSizeMax {
				return nil, fmt.Errorf("%w: data chunk declares %d bytes, %d remain", ErrTruncated, size, len(b))
			}
			size = uint32(len(b))
		}
		if id == "data" && size == unknownSizeZero && streamed {
			size = uint32(len(b))
		}

		chunks = append(chunks, chunk{id: id, body: b[:size]})
		if id == "data" {
			// Anything after the samples is not part of the audio.
			break
		}

		b = b[size:]
		if size%2 == 1 && len(b) > 0 {
			b = b[1:]
		}
	}
	return chunks, nil
}

// Decode parses a RIFF/WAVE container holding 16-bit PCM.
func Decode(b []byte) (*Audio, error) {
	if len(b) < 12 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTruncated, len(b))
	}
	if !IsRIFF(b) {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrMalformed)
	}

	riffSize := binary.LittleEndian.Uint32(b[4:8])
	chunks, err := readChunks(b[12:], riffSize == unknownSizeZero || riffSize == unknownSizeMax)
	if err != nil {
		return nil, err
	}

	fmtChunk, ok := util.FindFirst(chunks, func(c chunk) bool { return c.id == "fmt " })
	if !ok {
		return nil, fmt.Errorf("%w: no fmt chunk", ErrMalformed)
	}
	if len(fmtChunk.body) < 16 {
		return nil, fmt.Errorf("%w: fmt chunk is %d bytes", ErrMalformed, len(fmtChunk.body))
	}

	format := binary.LittleEndian.Uint16(fmtChunk.body[0:2])
	channels := int(binary.LittleEndian.Uint16(fmtChunk.body[2:4]))
	sampleRate := int(binary.LittleEndian.Uint32(fmtChunk.body[4:8]))
	bits := int(binary.LittleEndian.Uint16(fmtChunk.body[14:16]))

	if format != formatPCM && format != formatExtensible {
		return nil, fmt.Errorf("%w: audio format %d is not PCM", ErrMalformed, format)
	}
	if bits != BitsPerSample {
		return nil, &SampleWidthError{Bits: bits}
	}
	if channels == 0 {
		return nil, fmt.Errorf("%w: zero channels", ErrMalformed)
	}

	dataChunk, ok := util.FindFirst(chunks, func(c chunk) bool { return c.id == "data" })
	if !ok {
		return nil, fmt.Errorf("%w: no data chunk", ErrMalformed)
	}

	data := dataChunk.body
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}

	return &Audio{
		Channels:   channels,
		SampleRate: sampleRate,
		Samples:    samples,
	}, nil
}

// Bytes encodes the audio as a canonical 16-bit PCM WAV container.
func (a *Audio) Bytes() []byte {
	dataSize := len(a.Samples) * 2
	blockAlign := a.Channels * BitsPerSample / 8
	byteRate := a.SampleRate * blockAlign

	out := make([]byte, 0, HeaderSize+dataSize)
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(36+dataSize))
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, formatPCM)
	out = binary.LittleEndian.AppendUint16(out, uint16(a.Channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(a.SampleRate))
	out = binary.LittleEndian.AppendUint32(out, uint32(byteRate))
	out = binary.LittleEndian.AppendUint16(out, uint16(blockAlign))
	out = binary.LittleEndian.AppendUint16(out, BitsPerSample)

	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(dataSize))
	for _, s := range a.Samples {
		out = binary.LittleEndian.AppendUint16(out, uint16(s))
	}
	return out
}

// IsRIFF reports whether b starts like a WAV container.
func IsRIFF(b []byte) bool {
	return len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WAVE"))
}
