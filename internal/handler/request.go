package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"unicode/utf8"

	"github.com/glizzus/sound-stego/internal/util"
)

type SecretType string

const (
	SecretText  SecretType = "text"
	SecretImage SecretType = "image"
)

func parseSecretType(s string) (SecretType, error) {
	switch SecretType(s) {
	case SecretText, SecretImage:
		return SecretType(s), nil
	default:
		return "", &UserError{Message: fmt.Sprintf("invalid type %q: must be text or image", s)}
	}
}

type EmbedRequest struct {
	Audio  []byte
	Secret []byte
	Type   SecretType
	Key    []byte
}

type ExtractRequest struct {
	Audio []byte
	Type  SecretType
	Key   []byte
}

func FormToEmbedRequest(form *multipart.Form) (*EmbedRequest, error) {
	audio, err := formFile(form, "audio")
	if err != nil {
		return nil, err
	}
	secret, err := formFile(form, "secret")
	if err != nil {
		return nil, err
	}
	secretType, key, err := typeAndKey(form)
	if err != nil {
		return nil, err
	}

	if secretType == SecretText && !utf8.Valid(secret) {
		return nil, &UserError{Message: "secret is not valid UTF-8 text"}
	}

	return &EmbedRequest{
		Audio:  audio,
		Secret: secret,
		Type:   secretType,
		Key:    key,
	}, nil
}

func FormToExtractRequest(form *multipart.Form) (*ExtractRequest, error) {
	audio, err := formFile(form, "audio")
	if err != nil {
		return nil, err
	}
	secretType, key, err := typeAndKey(form)
	if err != nil {
		return nil, err
	}

	return &ExtractRequest{
		Audio: audio,
		Type:  secretType,
		Key:   key,
	}, nil
}

func typeAndKey(form *multipart.Form) (SecretType, []byte, error) {
	rawType, err := formValue(form, "type")
	if err != nil {
		return "", nil, err
	}
	secretType, err := parseSecretType(rawType)
	if err != nil {
		return "", nil, err
	}

	key, err := formValue(form, "key")
	if err != nil {
		return "", nil, err
	}
	return secretType, []byte(key), nil
}

func formValue(form *multipart.Form, name string) (string, error) {
	v, err := util.GetOne(form.Value[name])
	if err != nil {
		return "", &UserError{Message: fmt.Sprintf("field %q: %v", name, err)}
	}
	return v, nil
}

func formFile(form *multipart.Form, name string) ([]byte, error) {
	header, err := util.GetOne(form.File[name])
	if err != nil {
		return nil, &UserError{Message: fmt.Sprintf("file %q: %v", name, err)}
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %q: %w", name, err)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %q: %w", name, err)
	}
	return b, nil
}
