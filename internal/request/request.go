package request

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nhdewitt/static-from-tcp/internal/headers"
)

// DefaultReadLimit caps the single read a request is parsed from.
const DefaultReadLimit = 1024

var ErrMalformedRequestLine = errors.New("malformed request line")

type Request struct {
	RequestLine RequestLine
	Headers     headers.Headers
	Body        string
	hasBody     bool
}

type RequestLine struct {
	HttpVersion   string
	RequestTarget string
	Method        string
}

// HasBody reports whether any body lines were collected.
func (r *Request) HasBody() bool {
	return r.hasBody
}

func (r *Request) String() string {
	return fmt.Sprintf("Method: %s\nPath: %s\nVersion: %s\nHeaders: %v",
		r.RequestLine.Method, r.RequestLine.RequestTarget, r.RequestLine.HttpVersion, map[string]string(r.Headers))
}

// RequestFromReader performs one read of at most limit bytes and parses
// whatever arrived. It does not wait for more data.
func RequestFromReader(reader io.Reader, limit int) (*Request, error) {
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	buf := make([]byte, limit)

	n, err := reader.Read(buf)
	if n == 0 {
		if err == nil {
			err = io.ErrNoProgress
		}
		return nil, fmt.Errorf("error reading request: %w", err)
	}

	return Parse(buf[:n])
}

// Parse turns raw request bytes into a Request.
//
// Lines after the request line that split into two fields are headers.
// Lines holding a single field are joined with newlines into the body,
// which is also stored under headers.BodyKey. Lines with any other field
// count are dropped, so a body containing whitespace is not recoverable.
func Parse(data []byte) (*Request, error) {
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	rl, err := requestLineFromString(strings.TrimSpace(lines[0]))
	if err != nil {
		return nil, err
	}

	r := Request{
		RequestLine: *rl,
		Headers:     headers.NewHeaders(),
	}

	var body []string
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if r.Headers.ParseLine(line) {
			continue
		}
		if fields := strings.Fields(line); len(fields) == 1 {
			body = append(body, fields[0])
		}
	}

	if len(body) > 0 {
		r.Body = strings.Join(body, "\n")
		r.hasBody = true
		r.Headers.Set(headers.BodyKey, r.Body)
	}

	return &r, nil
}

func requestLineFromString(s string) (*RequestLine, error) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRequestLine, s)
	}

	return &RequestLine{
		Method:        parts[0],
		RequestTarget: parts[1],
		HttpVersion:   parts[2],
	}, nil
}
