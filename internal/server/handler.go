package server

import (
	"github.com/nhdewitt/static-from-tcp/internal/request"
	"github.com/nhdewitt/static-from-tcp/internal/response"
)

// Handler writes exactly one response for req. It never sees requests
// whose request line failed to parse; the server answers those with 400.
type Handler func(w *response.Writer, req *request.Request)
