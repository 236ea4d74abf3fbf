package headers

import (
	"maps"
	"slices"
	"strings"
)

// BodyKey is the synthetic key the loose request body is stored under.
const BodyKey = "body"

// Headers maps field names to values. Names keep the case they arrived
// with; a repeated name overwrites the earlier value.
type Headers map[string]string

func NewHeaders() Headers {
	return map[string]string{}
}

// ParseLine treats a trimmed request line as a header when it splits into
// exactly two whitespace-separated fields. A trailing colon on the name is
// dropped. It reports whether the line was consumed.
func (h Headers) ParseLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return false
	}

	name := strings.TrimSuffix(fields[0], ":")
	if name == "" {
		return false
	}

	h.Set(name, fields[1])
	return true
}

func (h Headers) Set(key, value string) {
	h[key] = value
}

// Get returns the value stored under key. An exact match wins; otherwise
// the first case-insensitive match in sorted name order is returned.
func (h Headers) Get(key string) (value string) {
	if v, ok := h[key]; ok {
		return v
	}
	for _, k := range h.Keys() {
		if strings.EqualFold(k, key) {
			return h[k]
		}
	}
	return ""
}

func (h Headers) Del(key string) {
	delete(h, key)
}

// Keys returns the field names in sorted order.
func (h Headers) Keys() []string {
	return slices.Sorted(maps.Keys(h))
}
