package response

import "fmt"

type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusMovedPermanently    StatusCode = 301
	StatusBadRequest          StatusCode = 400
	StatusNotFound            StatusCode = 404
	StatusMethodNotAllowed    StatusCode = 405
	StatusInternalServerError StatusCode = 500
)

var reasonPhrases = map[StatusCode]string{
	StatusOK:                  "OK",
	StatusMovedPermanently:    "Moved Permanently",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusMethodNotAllowed:    "Method Not Allowed",
	StatusInternalServerError: "Internal Server Error",
}

// ReasonPhrase returns the reason phrase for the code, or "" if unknown.
func (s StatusCode) ReasonPhrase() string {
	return reasonPhrases[s]
}

func (s StatusCode) String() string {
	return fmt.Sprintf("%d %s", int(s), s.ReasonPhrase())
}
