package native

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/arloliu/go-insight/logger"
)

// SessionState represents the stages of a Native Mode session lifecycle.
//
// A session moves through its states strictly in order and never regresses,
// except that any state may transition to StateClosed.
type SessionState uint32

// Native Mode session states, in lifecycle order.
const (
	// StateDisconnected indicates that the TCP connection is not established.
	StateDisconnected SessionState = iota
	// StateAwaitingGreeting indicates that the TCP connection is established
	// and the session is waiting for the device greeting line.
	StateAwaitingGreeting
	// StateAwaitingUser indicates that the greeting was verified and the
	// session is waiting for the "User: " prompt.
	StateAwaitingUser
	// StateAwaitingPassword indicates that the username was sent and the
	// session is waiting for the "Password: " prompt.
	StateAwaitingPassword
	// StateReady indicates that login completed and commands may be executed.
	StateReady
	// StateClosed indicates that the session has been torn down. A closed
	// session cannot be reopened; callers must create a fresh one.
	StateClosed
)

// IsReady returns whether the session completed login and accepts commands.
func (ss SessionState) IsReady() bool { return ss == StateReady }

// IsClosed returns whether the session has been torn down.
func (ss SessionState) IsClosed() bool { return ss == StateClosed }

// String returns the string representation of the session state.
func (ss SessionState) String() string {
	switch ss {
	case StateDisconnected:
		return "disconnected"
	case StateAwaitingGreeting:
		return "awaiting-greeting"
	case StateAwaitingUser:
		return "awaiting-user"
	case StateAwaitingPassword:
		return "awaiting-password"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// SessionStateChangeHandler is invoked when the state of a session changes.
//
// Note: the handler is invoked synchronously within the lifecycle operation.
// Take care with long-running implementations.
type SessionStateChangeHandler func(sess *Session, prevState SessionState, newState SessionState)

// sessionStateMgr manages lifecycle state transitions for a session.
//
// Transitions are forward-only: the next state must be the immediate
// successor of the current state, or StateClosed. Transitions are safe for
// concurrent use; handler invocation happens under the manager's lock.
type sessionStateMgr struct {
	mu       sync.Mutex
	state    atomic.Uint32
	sess     *Session
	logger   logger.Logger
	handlers []SessionStateChangeHandler
}

func newSessionStateMgr(sess *Session, l logger.Logger, handlers ...SessionStateChangeHandler) *sessionStateMgr {
	mgr := &sessionStateMgr{
		sess:     sess,
		logger:   l,
		handlers: make([]SessionStateChangeHandler, 0, len(handlers)),
	}
	mgr.handlers = append(mgr.handlers, handlers...)
	mgr.state.Store(uint32(StateDisconnected))

	return mgr
}

// State returns the current session state.
func (sm *sessionStateMgr) State() SessionState {
	return SessionState(sm.state.Load())
}

// addHandler registers handlers to be invoked on state changes.
func (sm *sessionStateMgr) addHandler(handlers ...SessionStateChangeHandler) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.handlers = append(sm.handlers, handlers...)
}

// toState transitions to the given state, invoking registered handlers.
//
// Transitioning to the current state is a no-op. Any state may transition to
// StateClosed; otherwise only the immediate successor is allowed.
func (sm *sessionStateMgr) toState(next SessionState) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cur := sm.State()
	if next == cur {
		return nil
	}

	if next != StateClosed && uint32(next) != uint32(cur)+1 {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, cur, next)
	}
	if cur == StateClosed {
		return fmt.Errorf("%w: session already closed", ErrInvalidTransition)
	}

	sm.state.Store(uint32(next))
	sm.logger.Debug("session state changed", "prev_state", cur, "new_state", next)

	for _, handler := range sm.handlers {
		handler(sm.sess, cur, next)
	}

	return nil
}
