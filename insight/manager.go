package insight

import (
	"context"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/arloliu/go-insight/native"
)

// Manager holds a named registry of clients for talking to several vision
// systems from one process. All methods are safe for concurrent use; each
// registered client still carries the one-command-at-a-time contract of its
// own session.
type Manager struct {
	clients *xsync.MapOf[string, *Client]
}

// NewManager creates an empty client registry.
func NewManager() *Manager {
	return &Manager{
		clients: xsync.NewMapOf[string, *Client](),
	}
}

// Connect creates a session from cfg, opens it, and registers the resulting
// client under name. Registering a name twice fails with ErrClientExists;
// a dial or handshake failure leaves the registry unchanged.
func (m *Manager) Connect(ctx context.Context, name string, cfg *native.SessionConfig) (*Client, error) {
	if name == "" {
		return nil, newValidationError("name", "must not be empty")
	}
	if _, ok := m.clients.Load(name); ok {
		return nil, fmt.Errorf("%w: %s", ErrClientExists, name)
	}

	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if _, loaded := m.clients.LoadOrStore(name, client); loaded {
		// A concurrent Connect won the race for this name.
		_ = client.Close()
		return nil, fmt.Errorf("%w: %s", ErrClientExists, name)
	}

	return client, nil
}

// Get returns the client registered under name.
func (m *Manager) Get(name string) (*Client, error) {
	client, ok := m.clients.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, name)
	}

	return client, nil
}

// Close closes and unregisters the client registered under name.
func (m *Manager) Close(name string) error {
	client, ok := m.clients.LoadAndDelete(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrClientNotFound, name)
	}

	return client.Close()
}

// CloseAll closes and unregisters every client in the registry.
func (m *Manager) CloseAll() {
	m.clients.Range(func(name string, client *Client) bool {
		m.clients.Delete(name)
		_ = client.Close()
		return true
	})
}

// Len returns the number of registered clients.
func (m *Manager) Len() int {
	return m.clients.Size()
}

// Names returns the names of all registered clients, in no particular order.
func (m *Manager) Names() []string {
	names := make([]string, 0, m.clients.Size())
	m.clients.Range(func(name string, _ *Client) bool {
		names = append(names, name)
		return true
	})

	return names
}
