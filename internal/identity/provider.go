package identity

import (
	"sync"

	"todod/internal/model"
)

type (
	// A Provider owns the active identity of a running client and pushes
	// every change to its watchers. It is the in-process rendition of an
	// authentication-state stream: Watch delivers the current identity
	// promptly at subscription time, then again on every sign-in/sign-out.
	Provider struct {
		*Service

		mu       sync.Mutex
		current  *model.User
		watchers []*watcher
	}

	watcher struct {
		ch chan *model.User
	}
)

// NewProvider returns a new Provider backed by the given credential service.
func NewProvider(svc *Service) *Provider {
	return &Provider{Service: svc}
}

// Watch subscribes to identity changes. The channel carries the current
// identity (nil when anonymous), starting with the state at subscription
// time. The returned function releases the subscription and closes the
// channel.
func (p *Provider) Watch() (<-chan *model.User, func()) {
	w := &watcher{ch: make(chan *model.User, 1)}

	p.mu.Lock()
	p.watchers = append(p.watchers, w)
	w.ch <- p.current
	p.mu.Unlock()

	var once sync.Once
	return w.ch, func() {
		once.Do(func() {
			p.unwatch(w)
		})
	}
}

// SignUp creates a new account and makes it the active identity.
func (p *Provider) SignUp(email, password string) (*model.User, error) {
	user, err := p.Service.SignUp(email, password)
	if err != nil {
		return nil, err
	}

	p.setCurrent(user)
	return user, nil
}

// SignIn verifies the credentials and makes the account the active identity.
func (p *Provider) SignIn(email, password string) (*model.User, error) {
	user, err := p.Service.SignIn(email, password)
	if err != nil {
		return nil, err
	}

	p.setCurrent(user)
	return user, nil
}

// SignOut clears the active identity.
func (p *Provider) SignOut() error {
	p.setCurrent(nil)
	return nil
}

// Current returns the active identity, or nil when anonymous.
func (p *Provider) Current() *model.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Provider) setCurrent(user *model.User) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = user
	for _, w := range p.watchers {
		// Latest state wins when the watcher lags behind.
		select {
		case w.ch <- user:
		default:
			select {
			case <-w.ch:
			default:
			}
			select {
			case w.ch <- user:
			default:
			}
		}
	}
}

func (p *Provider) unwatch(w *watcher) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, x := range p.watchers {
		if x == w {
			p.watchers = append(p.watchers[:i], p.watchers[i+1:]...)
			break
		}
	}
	close(w.ch)
}
