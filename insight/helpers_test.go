package insight

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/arloliu/go-insight/native"
	"github.com/stretchr/testify/require"
)

// startDeviceAddr starts a stub vision system that performs the login
// exchange on its single accepted connection and then hands the connection
// to script. It returns the host and port to dial.
func startDeviceAddr(t *testing.T, script func(t *testing.T, c net.Conn)) (string, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		deviceLogin(t, c)
		if script != nil {
			script(t, c)
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return host, port
}

// startDevice connects a client to a freshly started stub device.
func startDevice(t *testing.T, script func(t *testing.T, c net.Conn)) *Client {
	t.Helper()

	host, port := startDeviceAddr(t, script)
	client, err := Connect(context.Background(), deviceConfig(t, host, port))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func deviceConfig(t *testing.T, host string, port int) *native.SessionConfig {
	t.Helper()

	cfg, err := native.NewSessionConfig(host,
		native.WithPort(port),
		native.WithConnectTimeout(1*time.Second),
	)
	require.NoError(t, err)

	return cfg
}

// newOfflineClient creates a client over an unopened session, for exercising
// validation paths that must fail before any wire interaction.
func newOfflineClient(t *testing.T) *Client {
	t.Helper()

	cfg, err := native.NewSessionConfig("127.0.0.1")
	require.NoError(t, err)
	sess, err := native.NewSession(cfg)
	require.NoError(t, err)
	client, err := NewClient(sess)
	require.NoError(t, err)

	return client
}

// deviceLogin drives the greeting and credential exchange device-side.
func deviceLogin(t *testing.T, c net.Conn) {
	t.Helper()

	writeRaw(t, c, "Welcome In-Sight\r\n")
	writeRaw(t, c, "User: ")
	readLine(t, c)
	writeRaw(t, c, "Password: ")
	readLine(t, c)
	writeRaw(t, c, "User Logged In\r\n")
}

// readLine reads one socket write from the client.
func readLine(t *testing.T, c net.Conn) string {
	t.Helper()

	buf := make([]byte, 4096)
	n, err := c.Read(buf)
	if err != nil {
		t.Errorf("readLine: %v", err)
		return ""
	}

	return string(buf[:n])
}

func writeRaw(t *testing.T, c net.Conn, data string) {
	t.Helper()

	if _, err := c.Write([]byte(data)); err != nil {
		t.Errorf("writeRaw: %v", err)
	}
}

// expectCommand asserts the next client request line, then answers it.
func expectCommand(t *testing.T, c net.Conn, want string, response string) {
	t.Helper()

	if got := readLine(t, c); got != want+"\r\n" {
		t.Errorf("command line = %q, want %q", got, want+"\r\n")
	}
	writeRaw(t, c, response)
}
