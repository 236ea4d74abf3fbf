package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// send writes one request and returns everything the server sent back
// before closing the connection.
func send(addr string, lines []string, timeout time.Duration) ([]byte, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("error dialing %s: %w", addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	if _, err := io.WriteString(conn, strings.Join(lines, "\r\n")+"\r\n\r\n"); err != nil {
		return nil, fmt.Errorf("error writing request: %w", err)
	}

	return io.ReadAll(conn)
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	timeout := flag.Duration("timeout", 5*time.Second, "dial and read timeout")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	r := bufio.NewReader(os.Stdin)
	var lines []string
	fmt.Print("> ")
	for {
		line, err := r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			lines = append(lines, line)
		}

		if (line == "" || err != nil) && len(lines) > 0 {
			resp, serr := send(*addr, lines, *timeout)
			if serr != nil {
				logger.Error().Err(serr).Msg("request failed")
			} else {
				fmt.Printf("%s\n", resp)
			}
			lines = nil
		}
		if err != nil {
			if err != io.EOF {
				logger.Error().Err(err).Msg("input error")
			}
			return
		}
		if line == "" {
			fmt.Print("> ")
		}
	}
}
