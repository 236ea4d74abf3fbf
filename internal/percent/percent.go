// Package percent decodes %XX escapes in URL paths.
package percent

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var ErrMalformedEncoding = errors.New("malformed percent encoding")

// Decode replaces every %XX escape in input with the byte it encodes. An
// escape that is cut short or holds a non-hex digit, or a result that is
// not valid UTF-8, yields ErrMalformedEncoding.
func Decode(input []byte) (string, error) {
	output := make([]byte, 0, len(input))
	for i := 0; i < len(input); i++ {
		if input[i] != '%' {
			output = append(output, input[i])
			continue
		}
		if i+2 >= len(input) {
			return "", fmt.Errorf("%w: incomplete escape at offset %d", ErrMalformedEncoding, i)
		}
		hi, ok1 := unhex(input[i+1])
		lo, ok2 := unhex(input[i+2])
		if !ok1 || !ok2 {
			return "", fmt.Errorf("%w: invalid escape %q at offset %d", ErrMalformedEncoding, input[i:i+3], i)
		}
		output = append(output, hi<<4|lo)
		i += 2
	}

	if !utf8.Valid(output) {
		return "", fmt.Errorf("%w: decoded bytes are not UTF-8", ErrMalformedEncoding)
	}
	return string(output), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
