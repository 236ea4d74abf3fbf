package static

import "path"

const defaultContentType = "text/plain"

// Extensions are matched case-sensitively and without the leading dot.
var contentTypes = map[string]string{
	"html": "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
	"png":  "image/png",
}

// ContentType maps the extension of the request path to a MIME type.
// Unknown or missing extensions are served as text/plain.
func ContentType(p string) string {
	ext := path.Ext(p)
	if ext == "" {
		return defaultContentType
	}
	if ct, ok := contentTypes[ext[1:]]; ok {
		return ct
	}
	return defaultContentType
}
