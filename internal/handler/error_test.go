package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/glizzus/sound-stego/internal/crypt"
	"github.com/glizzus/sound-stego/internal/datalayer"
	"github.com/glizzus/sound-stego/internal/lsb"
	"github.com/glizzus/sound-stego/internal/wav"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "user error", err: &UserError{Message: "bad"}, want: http.StatusBadRequest},
		{name: "key length", err: &crypt.KeyLengthError{Length: 3}, want: http.StatusBadRequest},
		{name: "malformed wav", err: fmt.Errorf("decode: %w", wav.ErrMalformed), want: http.StatusBadRequest},
		{name: "payload too large", err: &lsb.CapacityError{Bits: 512, Capacity: 100}, want: http.StatusRequestEntityTooLarge},
		{name: "upload too large", err: &http.MaxBytesError{Limit: 10}, want: http.StatusRequestEntityTooLarge},
		{name: "sample width", err: &wav.SampleWidthError{Bits: 24}, want: http.StatusUnsupportedMediaType},
		{name: "padding", err: crypt.ErrPaddingInvalid, want: http.StatusUnprocessableEntity},
		{name: "secret not text", err: ErrSecretNotText, want: http.StatusUnprocessableEntity},
		{name: "not found", err: datalayer.ErrNotFound, want: http.StatusNotFound},
		{name: "storage", err: &StorageError{Op: "put", Key: "k", Err: errors.New("down")}, want: http.StatusBadGateway},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestDetailForHidesInternalErrors(t *testing.T) {
	err := errors.New("dial tcp 10.0.0.1:9000: connection refused")
	if got := detailFor(http.StatusInternalServerError, err); got == err.Error() {
		t.Errorf("internal error leaked to client: %q", got)
	}
	if got := detailFor(http.StatusBadRequest, err); got != err.Error() {
		t.Errorf("detailFor(400) = %q, want %q", got, err.Error())
	}
}
