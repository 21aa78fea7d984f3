package native

import (
	"net"
	"strconv"
	"testing"

	"github.com/arloliu/go-insight/logger"
)

// newTestConfig creates a SessionConfig suitable for tests.
func newTestConfig(t *testing.T, opts ...SessionOption) *SessionConfig {
	t.Helper()

	cfg, err := NewSessionConfig("127.0.0.1", opts...)
	if err != nil {
		t.Fatalf("newTestConfig: %v", err)
	}

	return cfg
}

// newPipeSession creates a Session wired to the local end of net.Pipe and
// forced into the ready state. Returns the session and the remote end for
// device simulation.
//
// net.Pipe is synchronous and unbuffered, so every remote Write arrives as
// exactly one receiveLines batch, which makes read-boundary behavior easy to
// script.
func newPipeSession(t *testing.T, opts ...SessionOption) (*Session, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	cfg := newTestConfig(t, opts...)
	sess, err := NewSession(cfg)
	if err != nil {
		t.Fatalf("newPipeSession: %v", err)
	}

	sess.conn = local
	sess.transport = newLineTransport(local, cfg, logger.GetLogger())
	sess.stateMgr.state.Store(uint32(StateReady))

	return sess, remote
}

// readRequest reads one socket write from the remote end of the pipe.
func readRequest(t *testing.T, c net.Conn) string {
	t.Helper()

	buf := make([]byte, recvBufferSize)
	n, err := c.Read(buf)
	if err != nil {
		t.Errorf("readRequest: %v", err)
		return ""
	}

	return string(buf[:n])
}

// writeRaw writes data to the remote end, failing the test on error.
func writeRaw(t *testing.T, c net.Conn, data string) {
	t.Helper()

	if _, err := c.Write([]byte(data)); err != nil {
		t.Errorf("writeRaw: %v", err)
	}
}

// startStubDevice starts a TCP listener that accepts a single connection and
// runs script against it. It returns the host and port to dial.
func startStubDevice(t *testing.T, script func(t *testing.T, c net.Conn)) (string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("startStubDevice: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		script(t, c)
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("startStubDevice: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("startStubDevice: %v", err)
	}

	return host, port
}

// loginScript drives the greeting and credential exchange of the stub device,
// expecting the given username and password lines.
func loginScript(t *testing.T, c net.Conn, user string, password string) {
	t.Helper()

	writeRaw(t, c, "Welcome Test\r\n")
	writeRaw(t, c, "User: ")
	if got := readRequest(t, c); got != user+"\r\n" {
		t.Errorf("loginScript: user line = %q, want %q", got, user+"\r\n")
	}
	writeRaw(t, c, "Password: ")
	if got := readRequest(t, c); got != password+"\r\n" {
		t.Errorf("loginScript: password line = %q, want %q", got, password+"\r\n")
	}
	writeRaw(t, c, "User Logged In\r\n")
}
