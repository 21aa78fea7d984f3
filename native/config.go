package native

import (
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/arloliu/go-insight/logger"
)

// DefaultPort is the well-known TCP port of the In-Sight Native Mode
// command interface (telnet).
const DefaultPort = 23

// SessionConfig represents the configuration parameters for a Native Mode session.
type SessionConfig struct {
	mu sync.RWMutex

	// host specifies the host of the vision system.
	host string

	// port specifies the TCP port number of the command interface.
	// Defaults to DefaultPort (23).
	port int

	// user and password are the credentials exchanged during the login
	// handshake. The device factory defaults are user "admin" with an
	// empty password.
	user     string
	password string

	// connectTimeout defines the timeout for establishing the TCP connection.
	// It should be between 1 and 30 seconds.
	// Defaults to 3 seconds.
	connectTimeout time.Duration

	// readTimeout defines an optional per-read deadline applied to every
	// socket read after the session is open. Zero disables the deadline.
	//
	// The Native Mode protocol itself has no per-transaction timeout; this
	// facility is layered on the transport without changing the protocol.
	// Defaults to 0 (disabled).
	readTimeout time.Duration

	// logger provides a logger instance for session events and errors.
	logger logger.Logger

	// stateHandlers are invoked on every session state change.
	stateHandlers []SessionStateChangeHandler
}

// NewSessionConfig creates a new Native Mode session configuration with the
// given host and optional functional options.
//
// It initializes a SessionConfig struct with default values and then applies
// the provided options to customize the configuration.
//
// Returns a pointer to the initialized SessionConfig and an error if any
// occurred during the configuration process.
func NewSessionConfig(host string, opts ...SessionOption) (*SessionConfig, error) {
	cfg := &SessionConfig{
		port:           DefaultPort,
		user:           "admin",
		password:       "",
		connectTimeout: 3 * time.Second,
		readTimeout:    0,
		logger:         logger.GetLogger(),
	}

	if err := withHost(host).apply(cfg); err != nil {
		return cfg, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

// Host returns the configured host of the vision system.
func (cfg *SessionConfig) Host() string {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.host
}

// Port returns the configured TCP port number.
func (cfg *SessionConfig) Port() int {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.port
}

// User returns the configured login username.
func (cfg *SessionConfig) User() string {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.user
}

// ConnectTimeout returns the timeout for establishing the TCP connection.
func (cfg *SessionConfig) ConnectTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.connectTimeout
}

// ReadTimeout returns the per-read deadline, or zero when disabled.
func (cfg *SessionConfig) ReadTimeout() time.Duration {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.readTimeout
}

// Logger returns the logger associated with the configuration.
func (cfg *SessionConfig) Logger() logger.Logger {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.logger
}

// loginPassword returns the configured password. It is unexported so the
// credential never leaks through the public API or log fields.
func (cfg *SessionConfig) loginPassword() string {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	return cfg.password
}

// SessionOption represents a functional option for configuring a SessionConfig.
type SessionOption interface {
	apply(*SessionConfig) error
}

type sessionOptFunc struct {
	name      string
	applyFunc func(*SessionConfig) error
}

func (o *sessionOptFunc) apply(cfg *SessionConfig) error { return o.applyFunc(cfg) }

func newSessionOptFunc(name string, f func(*SessionConfig) error) *sessionOptFunc {
	return &sessionOptFunc{
		name:      name,
		applyFunc: f,
	}
}

// withHost sets the host of the vision system.
// It returns a SessionOption that validates the host and updates the configuration.
// An error is returned if the configuration is nil or the host is invalid.
func withHost(host string) SessionOption {
	return newSessionOptFunc("withHost", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		// Check if it's a valid IP address
		if ip := net.ParseIP(host); ip != nil {
			cfg.host = host
			return nil
		}

		// If not an IP, check if it's a valid domain name
		host = strings.TrimPrefix(host, ".")
		host = strings.TrimSuffix(host, ".")
		if _, err := net.LookupHost(host); err == nil {
			cfg.host = host
			return nil
		}

		return errors.New("native: invalid host")
	})
}

// WithPort sets the TCP port number of the command interface.
// It returns a SessionOption that validates the port number and updates the
// configuration. An error is returned if the port number is out of the valid
// range (1-65535) or if the configuration is nil.
//
// The default port is DefaultPort (23).
func WithPort(port int) SessionOption {
	return newSessionOptFunc("WithPort", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if port < 1 || port > 65535 {
			return errors.New("native: port is out of range [1, 65535]")
		}
		cfg.port = port

		return nil
	})
}

// WithCredentials sets the username and password exchanged during the login
// handshake.
//
// An error is returned if the configuration is nil or the username is empty.
// The device accepts an empty password when none is configured.
//
// The defaults are user "admin" with an empty password, matching the device
// factory configuration.
func WithCredentials(user string, password string) SessionOption {
	return newSessionOptFunc("WithCredentials", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if user == "" {
			return errors.New("native: user must not be empty")
		}
		if strings.ContainsAny(user, "\r\n") || strings.ContainsAny(password, "\r\n") {
			return errors.New("native: credentials must not contain line delimiters")
		}

		cfg.user = user
		cfg.password = password

		return nil
	})
}

// WithConnectTimeout sets the timeout for establishing the TCP connection.
// It should be between 1 and 30 seconds.
//
// The default value is 3 seconds.
func WithConnectTimeout(timeout time.Duration) SessionOption {
	return newSessionOptFunc("WithConnectTimeout", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if timeout < 1*time.Second || timeout > 30*time.Second {
			return errors.New("native: connect timeout is out of range [1s, 30s]")
		}
		cfg.connectTimeout = timeout

		return nil
	})
}

// WithReadTimeout sets an optional per-read deadline applied to every socket
// read after the session is open. A zero duration disables the deadline.
//
// The default value is 0 (disabled).
func WithReadTimeout(timeout time.Duration) SessionOption {
	return newSessionOptFunc("WithReadTimeout", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if timeout < 0 {
			return errors.New("native: read timeout must not be negative")
		}
		cfg.readTimeout = timeout

		return nil
	})
}

// WithLogger sets the logger instance for session events and errors.
//
// The default is the logger package's default logger.
func WithLogger(l logger.Logger) SessionOption {
	return newSessionOptFunc("WithLogger", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		if l == nil {
			return errors.New("native: logger is nil")
		}
		cfg.logger = l

		return nil
	})
}

// WithSessionStateChangeHandler registers handlers to be invoked when the
// session state changes. Handlers are invoked synchronously in registration
// order and must not block.
func WithSessionStateChangeHandler(handlers ...SessionStateChangeHandler) SessionOption {
	return newSessionOptFunc("WithSessionStateChangeHandler", func(cfg *SessionConfig) error {
		if cfg == nil {
			return ErrConfigNil
		}

		cfg.stateHandlers = append(cfg.stateHandlers, handlers...)

		return nil
	})
}
