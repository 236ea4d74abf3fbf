// Package fileserver answers GET requests with files from a static root.
//
// Each request gets exactly one response: the file, a redirect to the
// slash-terminated form of a directory path, or a bodiless error. Paths
// are resolved afresh for every request and must stay inside the root;
// anything that escapes it is reported as 404, the same as a missing file.
package fileserver

import (
	"io/fs"
	"strings"

	"github.com/nhdewitt/static-from-tcp/internal/headers"
	"github.com/nhdewitt/static-from-tcp/internal/percent"
	"github.com/nhdewitt/static-from-tcp/internal/request"
	"github.com/nhdewitt/static-from-tcp/internal/response"
	"github.com/nhdewitt/static-from-tcp/internal/static"
	"github.com/rs/zerolog"
)

const indexFile = "index.html"

// FileSystem is the read-only view of the static root the handler needs.
// Resolve must return a canonical path inside the root or an error.
type FileSystem interface {
	Resolve(target string) (string, error)
	Stat(name string) (fs.FileInfo, error)
	ReadText(name string) ([]byte, error)
}

type Options struct {
	// DecodePath percent-decodes the request target before resolving it.
	DecodePath bool
	Logger     zerolog.Logger
}

type Handler struct {
	fsys       FileSystem
	decodePath bool
	logger     zerolog.Logger
}

func New(fsys FileSystem, opts Options) *Handler {
	return &Handler{
		fsys:       fsys,
		decodePath: opts.DecodePath,
		logger:     opts.Logger,
	}
}

func (h *Handler) Serve(w *response.Writer, req *request.Request) {
	if req.RequestLine.Method != "GET" {
		h.writeEmpty(w, response.StatusMethodNotAllowed, response.ErrorHeaders())
		return
	}

	original := req.RequestLine.RequestTarget
	target := original
	if h.decodePath {
		decoded, err := percent.Decode([]byte(original))
		if err != nil {
			h.logger.Debug().Err(err).Str("path", original).Msg("rejecting undecodable path")
			h.writeEmpty(w, response.StatusBadRequest, response.ErrorHeaders())
			return
		}
		target = decoded
	}

	resolved, err := h.fsys.Resolve(target)
	if err != nil {
		h.notFound(w, target, err)
		return
	}
	info, err := h.fsys.Stat(resolved)
	if err != nil {
		h.notFound(w, target, err)
		return
	}

	if info.IsDir() {
		if !strings.HasSuffix(original, "/") {
			loc := headers.NewHeaders()
			loc.Set("Location", original+"/")
			h.writeEmpty(w, response.StatusMovedPermanently, loc)
			return
		}
		target += indexFile
		resolved, err = h.fsys.Resolve(target)
		if err != nil {
			h.notFound(w, target, err)
			return
		}
	} else if strings.HasSuffix(target, "/") {
		h.notFound(w, target, fs.ErrNotExist)
		return
	}

	body, err := h.fsys.ReadText(resolved)
	if err != nil {
		h.notFound(w, target, err)
		return
	}

	if err := w.WriteStatusLine(response.StatusOK); err != nil {
		h.logger.Warn().Err(err).Msg("error writing status line")
		return
	}
	if err := w.WriteHeaders(response.GetDefaultHeaders(len(body), static.ContentType(target))); err != nil {
		h.logger.Warn().Err(err).Msg("error writing headers")
		return
	}
	if _, err := w.WriteBody(body); err != nil {
		h.logger.Warn().Err(err).Msg("error writing body")
	}
}

func (h *Handler) notFound(w *response.Writer, target string, err error) {
	h.logger.Debug().Err(err).Str("path", target).Msg("not found")
	h.writeEmpty(w, response.StatusNotFound, response.ErrorHeaders())
}

func (h *Handler) writeEmpty(w *response.Writer, statusCode response.StatusCode, hdrs headers.Headers) {
	if err := w.WriteEmpty(statusCode, hdrs); err != nil {
		h.logger.Warn().Err(err).Int("status", int(statusCode)).Msg("error writing response")
	}
}
