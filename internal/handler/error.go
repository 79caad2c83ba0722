package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/glizzus/sound-stego/internal/datalayer"
	"github.com/glizzus/sound-stego/internal/stego"
	"github.com/glizzus/sound-stego/internal/transcode"
)

// ErrSecretNotText means a text extraction produced bytes that are not UTF-8.
// Embed only accepts UTF-8 text, so the key or the carrier is wrong.
var ErrSecretNotText = errors.New("extracted secret is not valid UTF-8 text")

// UserError is an error type that is used to represent
// an error that should be displayed to the user.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

var _ error = (*UserError)(nil)

// StorageError wraps a failure talking to blob storage.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

var _ error = (*StorageError)(nil)

// statusFor maps an error from a request to the HTTP status it is reported with.
func statusFor(err error) int {
	var userErr *UserError
	var maxBytesErr *http.MaxBytesError
	var storageErr *StorageError

	switch {
	case errors.As(err, &userErr):
		return http.StatusBadRequest
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, datalayer.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &storageErr):
		return http.StatusBadGateway
	case errors.Is(err, transcode.ErrFailed):
		return http.StatusBadRequest
	case errors.Is(err, ErrSecretNotText):
		return http.StatusUnprocessableEntity
	}

	switch stego.KindOf(err) {
	case stego.KindInvalidKeyLength, stego.KindMalformedContainer, stego.KindTruncatedContainer:
		return http.StatusBadRequest
	case stego.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case stego.KindUnsupportedSampleWidth:
		return http.StatusUnsupportedMediaType
	case stego.KindPaddingInvalid:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// detailFor hides internal failures from the client.
func detailFor(status int, err error) string {
	switch status {
	case http.StatusInternalServerError:
		return "internal server error"
	case http.StatusBadGateway:
		return "storage is unavailable"
	case http.StatusNotFound:
		return "file not found"
	case http.StatusUnprocessableEntity:
		return "could not decrypt secret: wrong key or corrupted audio"
	default:
		return err.Error()
	}
}
