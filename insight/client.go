package insight

import (
	"context"

	"github.com/arloliu/go-insight/native"
)

// Client exposes the Native Mode command set of one In-Sight vision system
// as typed methods over an opened native.Session.
//
// A Client inherits the session's concurrency contract: at most one command
// may be outstanding at a time.
type Client struct {
	sess *native.Session
}

// NewClient wraps an existing session. The session should already be open;
// commands issued before Open complete fail with native.ErrNotReady.
func NewClient(sess *native.Session) (*Client, error) {
	if sess == nil {
		return nil, ErrSessionNil
	}

	return &Client{sess: sess}, nil
}

// Connect creates a session from cfg, opens it, and returns a ready client.
// On any dial or handshake failure the session is closed and the error is
// returned as-is.
func Connect(ctx context.Context, cfg *native.SessionConfig) (*Client, error) {
	sess, err := native.NewSession(cfg)
	if err != nil {
		return nil, err
	}

	if err := sess.Open(ctx); err != nil {
		return nil, err
	}

	return &Client{sess: sess}, nil
}

// Session returns the underlying session, for access to its state and
// metrics.
func (c *Client) Session() *native.Session {
	return c.sess
}

// Close closes the underlying session. It is idempotent and never fails.
func (c *Client) Close() error {
	return c.sess.Close()
}
