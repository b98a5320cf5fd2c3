// Package gate tracks the authentication state of a running client.
//
// The state is a tagged union with three cases: Resolving until the identity
// stream delivers its first notification, then Anonymous or
// Authenticated(identity) depending on what it carries.
package gate

import (
	"sync"

	"todod/internal/identity"
	"todod/internal/model"
)

// A Phase discriminates the gate state union.
type Phase int

const (
	// Resolving means the identity stream has not delivered yet.
	Resolving Phase = iota
	// Anonymous means there is no active identity.
	Anonymous
	// Authenticated means an identity is active.
	Authenticated
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	}
	return "resolving"
}

// A State is the gate's current case. Identity is non-nil exactly when the
// phase is Authenticated.
type State struct {
	Phase    Phase
	Identity *model.User
}

// A Gate consumes the identity stream and exposes the resulting state.
// It holds no other side effects: which screen to render for each phase is
// the consumer's concern.
type Gate struct {
	unwatch func()
	done    chan struct{}

	mu      sync.Mutex
	state   State
	changes chan State
}

// New returns a gate subscribed to the given provider. The subscription is
// established once for the gate's lifetime; Close releases it.
func New(provider *identity.Provider) *Gate {
	ch, unwatch := provider.Watch()

	g := &Gate{
		unwatch: unwatch,
		done:    make(chan struct{}),
		state:   State{Phase: Resolving},
		changes: make(chan State, 1),
	}

	go g.run(ch)
	return g
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Changes returns a channel carrying state transitions. Only the latest
// undelivered state is retained.
func (g *Gate) Changes() <-chan State {
	return g.changes
}

// Close releases the identity subscription and stops the gate. The changes
// channel is closed once the run loop drains.
func (g *Gate) Close() {
	g.unwatch()
}

func (g *Gate) run(ch <-chan *model.User) {
	defer close(g.changes)

	for user := range ch {
		state := State{Phase: Anonymous}
		if user != nil {
			state = State{Phase: Authenticated, Identity: user}
		}

		g.mu.Lock()
		g.state = state
		g.mu.Unlock()

		// Latest state wins when the consumer lags behind.
		select {
		case g.changes <- state:
		default:
			select {
			case <-g.changes:
			default:
			}
			select {
			case g.changes <- state:
			default:
			}
		}
	}
}
