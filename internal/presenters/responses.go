package presenters

import "net/url"

const embedSuccessMessage = "Audio successfully embedded"

// EmbedResponse is the body returned after a carrier was stored.
type EmbedResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

// ExtractResponse carries either the recovered text or a download path
// for a recovered image.
type ExtractResponse struct {
	Secret string `json:"secret"`
}

// ErrorResponse mirrors the {"detail": ...} shape clients already parse.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// DownloadPath joins the public base with an escaped object key.
func DownloadPath(base, key string) string {
	return base + url.QueryEscape(key)
}

func BuildEmbedResponse(base, key string) EmbedResponse {
	return EmbedResponse{
		Message: embedSuccessMessage,
		Path:    DownloadPath(base, key),
	}
}

func BuildTextExtractResponse(secret string) ExtractResponse {
	return ExtractResponse{Secret: secret}
}

func BuildImageExtractResponse(base, key string) ExtractResponse {
	return ExtractResponse{Secret: DownloadPath(base, key)}
}

func BuildErrorResponse(detail string) ErrorResponse {
	return ErrorResponse{Detail: detail}
}
