package native

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/arloliu/go-insight/logger"
)

// Handshake literals defined by the device. The prompts are sent without a
// trailing line delimiter, so each arrives as an unterminated fragment.
const (
	greetingPrefix = "Welcome"
	promptUser     = "User: "
	promptPassword = "Password: "
	promptLoggedIn = "User Logged In"
)

// Session represents one Native Mode connection to an In-Sight vision system
// and its negotiated protocol state.
//
// A Session exclusively owns its socket. At most one transaction may be
// outstanding at a time; see Execute. A session that failed is not reusable:
// discard it and open a fresh one.
type Session struct {
	cfg    *SessionConfig
	logger logger.Logger

	stateMgr *sessionStateMgr

	connMutex sync.Mutex
	conn      net.Conn
	transport *lineTransport

	busy    atomic.Bool
	metrics SessionMetrics
}

// NewSession creates a new Native Mode session from the given configuration.
// The session starts in the disconnected state; call Open to establish and
// authenticate the connection.
func NewSession(cfg *SessionConfig) (*Session, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	sess := &Session{
		cfg:    cfg,
		logger: cfg.Logger().With("host", cfg.Host()),
	}
	sess.stateMgr = newSessionStateMgr(sess, sess.logger, cfg.stateHandlers...)

	return sess, nil
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return s.stateMgr.State()
}

// Metrics returns the metrics associated with the session.
func (s *Session) Metrics() *SessionMetrics {
	return &s.metrics
}

// GetLogger returns the logger associated with the session.
func (s *Session) GetLogger() logger.Logger {
	return s.logger
}

// Open establishes the TCP connection, verifies the device greeting, and
// performs the credential exchange, leaving the session in the ready state.
//
// A connect timeout is the only timeout the protocol defines; it is taken
// from the configuration. A timed-out or failed dial returns a wrapped
// ErrTransport. A greeting or prompt mismatch returns a *HandshakeError.
// Any failure closes the socket and leaves the session closed; no retry is
// attempted and the caller must discard the session.
func (s *Session) Open(ctx context.Context) error {
	if s.stateMgr.State() != StateDisconnected {
		return fmt.Errorf("%w: open from state %s", ErrInvalidTransition, s.stateMgr.State())
	}

	addr := net.JoinHostPort(s.cfg.Host(), strconv.Itoa(s.cfg.Port()))
	s.logger.Debug("dialing device", "addr", addr)

	dialer := net.Dialer{Timeout: s.cfg.ConnectTimeout()}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		_ = s.stateMgr.toState(StateClosed)
		return fmt.Errorf("%w: connect to %s: %w", ErrTransport, addr, err)
	}

	s.connMutex.Lock()
	s.conn = conn
	s.transport = newLineTransport(conn, s.cfg, s.logger)
	s.connMutex.Unlock()

	if err := s.stateMgr.toState(StateAwaitingGreeting); err != nil {
		s.Close()
		return err
	}

	if err := s.handshake(); err != nil {
		s.Close()
		return err
	}

	s.logger.Info("session ready", "addr", addr, "user", s.cfg.User())

	return nil
}

// handshake verifies the greeting line and walks the three-step login
// sequence. The device sends each prompt in its own write, so the first line
// of each read is compared byte-for-byte against the expected literal.
func (s *Session) handshake() error {
	greeting, err := s.receiveFirstLine()
	if err != nil {
		return err
	}
	if !strings.HasPrefix(greeting, greetingPrefix) {
		return &HandshakeError{Expected: greetingPrefix, Got: greeting}
	}
	s.logger.Debug("greeting verified", "greeting", greeting)

	if err := s.stateMgr.toState(StateAwaitingUser); err != nil {
		return err
	}
	if err := s.expectAndSend(promptUser, s.cfg.User()); err != nil {
		return err
	}

	if err := s.stateMgr.toState(StateAwaitingPassword); err != nil {
		return err
	}
	if err := s.expectAndSend(promptPassword, s.cfg.loginPassword()); err != nil {
		return err
	}

	confirm, err := s.receiveFirstLine()
	if err != nil {
		return err
	}
	if confirm != promptLoggedIn {
		return &HandshakeError{Expected: promptLoggedIn, Got: confirm}
	}

	return s.stateMgr.toState(StateReady)
}

// expectAndSend requires the next received line to equal prompt byte-for-byte
// and answers it with response as a bare command line.
func (s *Session) expectAndSend(prompt string, response string) error {
	line, err := s.receiveFirstLine()
	if err != nil {
		return err
	}
	if line != prompt {
		return &HandshakeError{Expected: prompt, Got: line}
	}

	return s.transport.sendLine(response)
}

func (s *Session) receiveFirstLine() (string, error) {
	lines, err := s.transport.receiveLines()
	if err != nil {
		return "", err
	}

	return lines[0], nil
}

// Close closes the socket if open and transitions the session to the closed
// state. It is idempotent and never fails. Closing aborts any socket
// operation in flight, which surfaces as a transport error to the caller of
// the active transaction.
func (s *Session) Close() error {
	s.connMutex.Lock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.connMutex.Unlock()

	if !s.stateMgr.State().IsClosed() {
		_ = s.stateMgr.toState(StateClosed)
		s.logger.Debug("session closed")
	}

	return nil
}
