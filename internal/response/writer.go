package response

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/nhdewitt/static-from-tcp/internal/headers"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	httpVersion = "HTTP/1.1"
	crlf        = "\r\n"
)

var (
	ErrStateOutOfOrder = errors.New("writer state out-of-order")
	ErrUnknownStatus   = errors.New("unknown status code")
)

type writerState int

const (
	StateWritingStatusLine writerState = iota
	StateWritingHeaders
	StateWritingBody
	StateDone
)

// Writer frames a single response: status line, headers, then an optional
// body. Calls out of that order fail with ErrStateOutOfOrder.
type Writer struct {
	writer  io.Writer
	state   writerState
	status  StatusCode
	written int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		writer: w,
		state:  StateWritingStatusLine,
	}
}

// Status returns the status code written so far, or 0.
func (w *Writer) Status() StatusCode {
	return w.status
}

// Written returns the number of body bytes written.
func (w *Writer) Written() int {
	return w.written
}

func (w *Writer) WriteStatusLine(statusCode StatusCode) error {
	if w.state != StateWritingStatusLine {
		return ErrStateOutOfOrder
	}

	reason := statusCode.ReasonPhrase()
	if reason == "" {
		return fmt.Errorf("%w: %d", ErrUnknownStatus, int(statusCode))
	}

	line := httpVersion + " " + strconv.Itoa(int(statusCode)) + " " + reason + crlf
	if _, err := io.WriteString(w.writer, line); err != nil {
		return fmt.Errorf("error writing status line: %w", err)
	}

	w.status = statusCode
	w.state = StateWritingHeaders
	return nil
}

// WriteHeaders writes h in sorted name order with canonical name casing,
// followed by the blank line ending the header block.
func (w *Writer) WriteHeaders(h headers.Headers) error {
	if w.state != StateWritingHeaders {
		return ErrStateOutOfOrder
	}

	caser := cases.Title(language.English)
	for _, k := range h.Keys() {
		line := caser.String(k) + ": " + h[k] + crlf
		if _, err := io.WriteString(w.writer, line); err != nil {
			return fmt.Errorf("error writing header: %w", err)
		}
	}
	if _, err := io.WriteString(w.writer, crlf); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	w.state = StateWritingBody
	return nil
}

func (w *Writer) WriteBody(p []byte) (int, error) {
	if w.state != StateWritingBody {
		return 0, ErrStateOutOfOrder
	}

	w.state = StateDone
	n, err := w.writer.Write(p)
	w.written += n
	return n, err
}

// WriteEmpty writes a complete response without a body.
func (w *Writer) WriteEmpty(statusCode StatusCode, h headers.Headers) error {
	if err := w.WriteStatusLine(statusCode); err != nil {
		return err
	}
	if h == nil {
		h = headers.NewHeaders()
	}
	if err := w.WriteHeaders(h); err != nil {
		return err
	}
	w.state = StateDone
	return nil
}

// GetDefaultHeaders returns the header set for a response carrying a body.
func GetDefaultHeaders(contentLen int, contentType string) headers.Headers {
	h := headers.NewHeaders()
	h.Set("Content-Length", strconv.Itoa(contentLen))
	h.Set("Content-Type", contentType)

	return h
}

// ErrorHeaders returns the header set sent with bodiless error responses.
func ErrorHeaders() headers.Headers {
	h := headers.NewHeaders()
	h.Set("Content-Type", "text/html")

	return h
}
