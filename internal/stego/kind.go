package stego

import (
	"errors"

	"github.com/glizzus/sound-stego/internal/crypt"
	"github.com/glizzus/sound-stego/internal/lsb"
	"github.com/glizzus/sound-stego/internal/trailer"
	"github.com/glizzus/sound-stego/internal/wav"
)

// Kind classifies pipeline failures so callers can map them to responses.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidKeyLength
	KindPayloadTooLarge
	KindPaddingInvalid
	KindTruncatedContainer
	KindUnsupportedSampleWidth
	KindMalformedContainer
)

var kindNames = map[Kind]string{
	KindUnknown:                "unknown",
	KindInvalidKeyLength:       "invalid_key_length",
	KindPayloadTooLarge:        "payload_too_large",
	KindPaddingInvalid:         "padding_invalid",
	KindTruncatedContainer:     "truncated_container",
	KindUnsupportedSampleWidth: "unsupported_sample_width",
	KindMalformedContainer:     "malformed_container",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// KindOf returns the Kind of err, or KindUnknown when err did not come from
// the pipeline.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, crypt.ErrInvalidKeyLength):
		return KindInvalidKeyLength
	case errors.Is(err, lsb.ErrPayloadTooLarge):
		return KindPayloadTooLarge
	case errors.Is(err, crypt.ErrPaddingInvalid):
		return KindPaddingInvalid
	case errors.Is(err, trailer.ErrTruncatedContainer),
		errors.Is(err, lsb.ErrShortCarrier),
		errors.Is(err, wav.ErrTruncated):
		return KindTruncatedContainer
	case errors.Is(err, wav.ErrUnsupportedSampleWidth):
		return KindUnsupportedSampleWidth
	case errors.Is(err, wav.ErrMalformed):
		return KindMalformedContainer
	default:
		return KindUnknown
	}
}
