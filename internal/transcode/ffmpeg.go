package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/glizzus/sound-stego/internal/wav"
)

var (
	ErrUnavailable = errors.New("ffmpeg is not available")
	// ErrFailed means ffmpeg ran but could not decode the input.
	ErrFailed = errors.New("ffmpeg could not decode input")
)

// Transcoder converts audio in any format into a WAV container.
type Transcoder interface {
	ToWAV(ctx context.Context, r io.Reader) ([]byte, error)
}

// FFmpeg runs the ffmpeg binary found at Path.
type FFmpeg struct {
	Path string
}

var _ Transcoder = (*FFmpeg)(nil)

// ToWAV decodes r with FFmpeg and re-encodes it as signed 16-bit little-endian
// PCM in a WAV container, keeping the source channel count and sample rate.
func (f *FFmpeg) ToWAV(ctx context.Context, r io.Reader) ([]byte, error) {
	path := f.Path
	if path == "" {
		path = "ffmpeg"
	}
	if _, err := exec.LookPath(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	ffmpeg := exec.CommandContext(ctx, path,
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-vn",
		"-map", "0:a:0",
		"-acodec", "pcm_s16le",
		"-f", "wav",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	ffmpeg.Stdin = r
	ffmpeg.Stdout = &stdout
	ffmpeg.Stderr = &stderr

	if err := ffmpeg.Run(); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrFailed, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Normalize decodes upload as a WAV carrier, transcoding it first when it is
// not already RIFF/WAVE. A nil Transcoder only accepts WAV input.
func Normalize(ctx context.Context, t Transcoder, upload []byte) (*wav.Audio, error) {
	if wav.IsRIFF(upload) || t == nil {
		return wav.Decode(upload)
	}

	converted, err := t.ToWAV(ctx, bytes.NewReader(upload))
	if err != nil {
		return nil, fmt.Errorf("failed to transcode carrier: %w", err)
	}
	return wav.Decode(converted)
}
