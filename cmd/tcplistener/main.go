package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"github.com/nhdewitt/static-from-tcp/internal/request"
	"github.com/rs/zerolog"
)

func main() {
	addr := flag.String("addr", ":42069", "address to listen on")
	limit := flag.Int("limit", request.DefaultReadLimit, "bytes read per request")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatal().Err(err).Msg("error listening")
	}
	defer listener.Close()

	logger.Info().Str("addr", listener.Addr().String()).Msg("listening for TCP traffic")
	for {
		c, err := listener.Accept()
		if err != nil {
			logger.Fatal().Err(err).Msg("error accepting connection")
		}
		logger.Info().Stringer("remote", c.RemoteAddr()).Msg("connection accepted")

		req, err := request.RequestFromReader(c, *limit)
		c.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("error parsing request")
			continue
		}

		fmt.Println(req)
		if req.HasBody() {
			fmt.Printf("Body:\n%s\n", req.Body)
		}
		logger.Info().Stringer("remote", c.RemoteAddr()).Msg("connection closed")
	}
}
