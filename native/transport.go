package native

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/arloliu/go-insight/internal/util"
	"github.com/arloliu/go-insight/logger"
)

const (
	// recvBufferSize bounds a single socket read. A read may deliver a
	// partial logical line or several lines at once; callers must parse on
	// line boundaries, not read boundaries.
	recvBufferSize = 4096

	// lineDelimiter terminates every logical line on the wire.
	lineDelimiter = "\r\n"
)

// lineTransport maps the raw TCP byte stream to logical CRLF-terminated
// ASCII lines.
//
// This type is NOT goroutine-safe. The session serializes access to it,
// consistent with the half-duplex nature of the protocol. A transport
// failure is terminal for the session; no retry is attempted.
type lineTransport struct {
	conn   net.Conn
	cfg    *SessionConfig
	logger logger.Logger
	buf    []byte
}

func newLineTransport(conn net.Conn, cfg *SessionConfig, l logger.Logger) *lineTransport {
	return &lineTransport{
		conn:   conn,
		cfg:    cfg,
		logger: l,
		buf:    make([]byte, recvBufferSize),
	}
}

// sendLine appends the line delimiter to text and writes all bytes to the
// socket in a single write call.
func (lt *lineTransport) sendLine(text string) error {
	lt.logger.Debug("send line", "text", text)

	_, err := lt.conn.Write([]byte(text + lineDelimiter))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}

	return nil
}

// receiveLines performs one socket read and splits the received bytes on the
// line delimiter.
//
// The returned slice may contain a trailing empty string when the read ended
// on a delimiter, and may hold fewer or more than one full logical message.
// An unterminated prompt such as "User: " is returned as a single fragment.
func (lt *lineTransport) receiveLines() ([]string, error) {
	if timeout := lt.cfg.ReadTimeout(); timeout > 0 {
		if err := lt.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}

	n, err := lt.conn.Read(lt.buf)
	if n == 0 {
		if err == nil {
			err = net.ErrClosed
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	data := lt.buf[:n]
	if !util.IsASCII(data) {
		return nil, fmt.Errorf("%w: response contains non-ASCII bytes", ErrProtocol)
	}

	lines := strings.Split(string(data), lineDelimiter)
	lt.logger.Debug("receive lines", "count", len(lines), "bytes", n)

	return lines, nil
}

// close closes the underlying socket. It is safe to call multiple times.
func (lt *lineTransport) close() error {
	return lt.conn.Close()
}
