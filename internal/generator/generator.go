package generator

import (
	"github.com/google/uuid"
)

// Generator is an interface that defines a method to generate a new value of type T.
// This can be used to generate unique identifiers, lazily iterate, etc.
type Generator[T any] interface {
	Next() (T, error)
}

// UUIDV4Generator is a generator that produces UUIDv4 strings.
// It implements the Generator interface.
type UUIDV4Generator struct{}

func (g *UUIDV4Generator) Next() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var _ Generator[string] = &UUIDV4Generator{}

const (
	EmbeddedAudioPrefix  = "embedded_audio_"
	ExtractedImagePrefix = "extracted_image_"
)

// ObjectKeyGenerator names stored objects as <Prefix><id><Extension>.
type ObjectKeyGenerator struct {
	Prefix    string
	Extension string
	IDs       Generator[string]
}

func (g *ObjectKeyGenerator) Next() (string, error) {
	ids := g.IDs
	if ids == nil {
		ids = &UUIDV4Generator{}
	}
	id, err := ids.Next()
	if err != nil {
		return "", err
	}
	return g.Prefix + id + g.Extension, nil
}

var _ Generator[string] = &ObjectKeyGenerator{}

// EmbeddedAudioKeys generates keys for containers produced by /embed.
func EmbeddedAudioKeys(ids Generator[string]) *ObjectKeyGenerator {
	return &ObjectKeyGenerator{Prefix: EmbeddedAudioPrefix, Extension: ".wav", IDs: ids}
}

// ExtractedImageKeys generates keys for images recovered by /extract.
func ExtractedImageKeys(ids Generator[string]) *ObjectKeyGenerator {
	return &ObjectKeyGenerator{Prefix: ExtractedImagePrefix, Extension: ".png", IDs: ids}
}
