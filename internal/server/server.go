package server

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nhdewitt/static-from-tcp/internal/request"
	"github.com/nhdewitt/static-from-tcp/internal/response"
	"github.com/rs/zerolog"
)

type Options struct {
	// ReadBufferSize caps the single read each request is parsed from.
	ReadBufferSize int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	// Sequential serves each connection to completion before accepting
	// the next one.
	Sequential bool
	Logger     zerolog.Logger
}

type Server struct {
	listener    net.Listener
	isListening atomic.Bool
	handler     Handler
	opts        Options
	logger      zerolog.Logger
	conns       sync.WaitGroup
	done        chan struct{}
}

// Serve listens on addr and starts accepting connections in the
// background. Every connection receives one response and is closed.
func Serve(addr string, handler Handler, opts Options) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = request.DefaultReadLimit
	}
	s := &Server{
		listener: listener,
		handler:  handler,
		opts:     opts,
		logger:   opts.Logger,
		done:     make(chan struct{}),
	}
	s.isListening.Store(true)
	go s.listen()

	return s, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Close stops accepting connections and waits for the ones in flight.
func (s *Server) Close() error {
	if !s.isListening.CompareAndSwap(true, false) {
		return nil
	}

	err := s.listener.Close()
	<-s.done
	s.conns.Wait()
	return err
}

func (s *Server) listen() {
	defer close(s.done)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.isListening.Load() {
				return
			}
			if errors.Is(err, net.ErrClosed) {
				s.logger.Error().Err(err).Msg("listener closed unexpectedly")
				return
			}
			s.logger.Warn().Err(err).Msg("error accepting connection")
			continue
		}

		s.conns.Add(1)
		if s.opts.Sequential {
			s.handle(conn)
			continue
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer s.conns.Done()
	defer conn.Close()

	logger := s.logger.With().
		Str("conn_id", uuid.NewString()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()

	if s.opts.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout)); err != nil {
			logger.Warn().Err(err).Msg("error setting read deadline")
		}
	}
	if s.opts.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.opts.ReadTimeout + s.opts.WriteTimeout)); err != nil {
			logger.Warn().Err(err).Msg("error setting write deadline")
		}
	}

	s.serveConn(conn, logger)
}

// serveConn reads one request from rw and writes one response back.
func (s *Server) serveConn(rw io.ReadWriter, logger zerolog.Logger) {
	start := time.Now()

	req, err := request.RequestFromReader(rw, s.opts.ReadBufferSize)
	w := response.NewWriter(rw)
	if err != nil {
		if !errors.Is(err, request.ErrMalformedRequestLine) {
			logger.Debug().Err(err).Msg("no request read")
			return
		}
		logger.Warn().Err(err).Msg("bad request")
		if err := w.WriteEmpty(response.StatusBadRequest, response.ErrorHeaders()); err != nil {
			logger.Warn().Err(err).Msg("error writing response")
		}
		return
	}

	s.handler(w, req)

	if w.Status() == 0 {
		logger.Error().
			Str("method", req.RequestLine.Method).
			Str("path", req.RequestLine.RequestTarget).
			Msg("handler wrote no response")
		return
	}
	logger.Info().
		Str("method", req.RequestLine.Method).
		Str("path", req.RequestLine.RequestTarget).
		Int("status", int(w.Status())).
		Int("bytes", w.Written()).
		Dur("duration", time.Since(start)).
		Msg("request")
}
