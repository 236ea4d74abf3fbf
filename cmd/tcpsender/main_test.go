package main

import (
	"bufio"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	received := make(chan string, 1)
	go func() {
		c, err := listener.Accept()
		if err != nil {
			return
		}
		defer c.Close()

		var sb strings.Builder
		r := bufio.NewReader(c)
		for {
			line, err := r.ReadString('\n')
			sb.WriteString(line)
			if err != nil || line == "\r\n" {
				break
			}
		}
		received <- sb.String()
		c.Write([]byte("HTTP/1.1 404 Not Found\r\n\r\n"))
	}()

	resp, err := send(listener.Addr().String(), []string{"GET /missing HTTP/1.1", "Host: localhost"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "HTTP/1.1 404 Not Found\r\n\r\n", string(resp))
	assert.Equal(t, "GET /missing HTTP/1.1\r\nHost: localhost\r\n\r\n", <-received)
}

func TestSendDialError(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	listener.Close()

	_, err = send(addr, []string{"GET / HTTP/1.1"}, 100*time.Millisecond)
	assert.Error(t, err)
}
