package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/glizzus/sound-stego/internal/datalayer"
	"github.com/glizzus/sound-stego/internal/generator"
	"github.com/glizzus/sound-stego/internal/observe"
	"github.com/glizzus/sound-stego/internal/presenters"
	"github.com/glizzus/sound-stego/internal/stego"
	"github.com/glizzus/sound-stego/internal/transcode"
)

// multipartMemory is how much of a form is kept in memory before
// spilling file parts to disk.
const multipartMemory = 32 << 20

// Pinger is implemented by storage backends that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	Storage    datalayer.BlobStorage
	Transcoder transcode.Transcoder
	Pipeline   stego.Pipeline
	AudioKeys  generator.Generator[string]
	ImageKeys  generator.Generator[string]
	Metrics    *observe.Metrics

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler

	PublicBaseURL  string
	MaxUploadBytes int64
}

// Routes returns the API mux wrapped in the observability middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /embed", s.handleEmbed)
	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("GET /download", s.handleDownload)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	if s.MetricsHandler != nil {
		mux.Handle("GET /metrics", s.MetricsHandler)
	}
	return observe.Middleware(s.Metrics)(mux)
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	if s.MaxUploadBytes > 0 {
		if r.ContentLength > s.MaxUploadBytes {
			return &http.MaxBytesError{Limit: s.MaxUploadBytes}
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return maxBytesErr
		}
		return &UserError{Message: "invalid multipart form: " + err.Error()}
	}
	return nil
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := FormToEmbedRequest(r.MultipartForm)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	carrier, err := transcode.Normalize(ctx, s.Transcoder, req.Audio)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	started := time.Now()
	container, err := s.Pipeline.Embed(carrier, req.Secret, req.Key)
	s.Metrics.RecordOperation(ctx, observe.OpEmbed, started, len(req.Secret), stego.KindOf(err).String(), err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	key, err := s.AudioKeys.Next()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.put(ctx, key, container, "audio/wav"); err != nil {
		s.writeError(w, r, err)
		return
	}

	slog.InfoContext(ctx, "secret embedded", "key", key, "type", req.Type, "secretBytes", len(req.Secret), "samples", len(carrier.Samples))
	writeJSON(w, http.StatusOK, presenters.BuildEmbedResponse(s.PublicBaseURL, key))
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.parseForm(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	req, err := FormToExtractRequest(r.MultipartForm)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	started := time.Now()
	secret, err := s.Pipeline.Extract(req.Audio, req.Key)
	s.Metrics.RecordOperation(ctx, observe.OpExtract, started, len(secret), stego.KindOf(err).String(), err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	switch req.Type {
	case SecretText:
		if !utf8.Valid(secret) {
			s.writeError(w, r, ErrSecretNotText)
			return
		}
		writeJSON(w, http.StatusOK, presenters.BuildTextExtractResponse(string(secret)))
	case SecretImage:
		key, err := s.ImageKeys.Next()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.put(ctx, key, secret, "image/png"); err != nil {
			s.writeError(w, r, err)
			return
		}
		slog.InfoContext(ctx, "image extracted", "key", key, "bytes", len(secret))
		writeJSON(w, http.StatusOK, presenters.BuildImageExtractResponse(s.PublicBaseURL, key))
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		s.writeError(w, r, &UserError{Message: "filename is required"})
		return
	}

	body, info, err := s.Storage.Get(ctx, filename)
	if err != nil {
		if !errors.Is(err, datalayer.ErrNotFound) {
			err = &StorageError{Op: "get", Key: filename, Err: err}
		}
		s.writeError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.WarnContext(ctx, "download interrupted", "key", filename, "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.Storage.(Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.writeError(w, r, &StorageError{Op: "ping", Err: err})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) put(ctx context.Context, key string, data []byte, contentType string) error {
	err := s.Storage.Put(ctx, key, bytes.NewReader(data), datalayer.PutOptions{
		Size:        int64(len(data)),
		ContentType: contentType,
	})
	if err != nil {
		return &StorageError{Op: "put", Key: key, Err: err}
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		slog.WarnContext(r.Context(), "request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, presenters.BuildErrorResponse(detailFor(status, err)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
