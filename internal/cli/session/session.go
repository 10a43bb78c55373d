// Package session tracks who is signed in for the lifetime of one application
// instance.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/branchd-dev/starter/internal/cli/client"
)

// ErrLoginInProgress is returned when a login or registration is attempted
// while another one is still pending
var ErrLoginInProgress = errors.New("a login is already in progress")

// Status is the coarse session state
type Status int

const (
	// Unknown until the startup rehydration check completes
	Unknown Status = iota
	Anonymous
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// State is a snapshot of the session. Once IsLoading is false,
// IsAuthenticated implies User != nil.
type State struct {
	IsAuthenticated bool
	User            *client.User
	IsLoading       bool
}

// Status derives the coarse session state
func (s State) Status() Status {
	switch {
	case s.IsLoading:
		return Unknown
	case s.IsAuthenticated:
		return Authenticated
	default:
		return Anonymous
	}
}

// Authenticator is the subset of the auth service the provider needs
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
	Register(ctx context.Context, name, email, password string) (*client.LoginResponse, error)
	Logout() error
	GetCurrentUser(ctx context.Context) (*client.User, error)
	HasToken() (bool, error)
}

// Provider owns the session state. Safe for concurrent use; network calls are
// made without holding the lock so State can be read while they run.
type Provider struct {
	svc    Authenticator
	logger zerolog.Logger

	mu          sync.Mutex
	state       State
	initStarted bool
	pending     bool
	listeners   []func(State)
}

// NewProvider creates a provider in the Unknown state. Call Init once.
func NewProvider(svc Authenticator, logger zerolog.Logger) *Provider {
	return &Provider{
		svc:    svc,
		logger: logger,
		state:  State{IsLoading: true},
	}
}

// State returns a copy of the current state
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// Status returns the coarse state
func (p *Provider) Status() Status {
	return p.State().Status()
}

// Subscribe registers fn to receive every state change
func (p *Provider) Subscribe(fn func(State)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

// Init rehydrates the session from a stored token. A token the backend no
// longer accepts is discarded silently. Only the first call does anything.
func (p *Provider) Init(ctx context.Context) {
	p.mu.Lock()
	if p.initStarted {
		p.mu.Unlock()
		return
	}
	p.initStarted = true
	p.mu.Unlock()

	hasToken, err := p.svc.HasToken()
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to read stored token, starting signed out")
	}
	if err != nil || !hasToken {
		p.update(func(s *State) {
			s.IsLoading = false
		})
		return
	}

	p.update(func(s *State) {
		s.IsAuthenticated = true
		s.IsLoading = true
	})

	user, err := p.svc.GetCurrentUser(ctx)
	if errors.Is(err, client.ErrNetwork) {
		// The backend was not reached, so the token was not judged
		p.logger.Warn().Err(err).Msg("Could not verify stored session, starting signed out")
		p.update(func(s *State) {
			s.IsAuthenticated = false
			s.User = nil
			s.IsLoading = false
		})
		return
	}
	if err != nil {
		p.logger.Debug().Err(errors.Join(client.ErrSessionInvalid, err)).Msg("Stored session rejected")
		if err := p.svc.Logout(); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to clear rejected token")
		}
		p.update(func(s *State) {
			s.IsAuthenticated = false
			s.User = nil
			s.IsLoading = false
		})
		return
	}

	p.update(func(s *State) {
		s.IsAuthenticated = true
		s.User = user
		s.IsLoading = false
	})
}

// Login signs in. On failure the session is signed out and the error is
// returned unchanged for display.
func (p *Provider) Login(ctx context.Context, email, password string) error {
	return p.authenticate(func() (*client.LoginResponse, error) {
		return p.svc.Login(ctx, email, password)
	})
}

// Register creates an account and signs in with it
func (p *Provider) Register(ctx context.Context, name, email, password string) error {
	return p.authenticate(func() (*client.LoginResponse, error) {
		return p.svc.Register(ctx, name, email, password)
	})
}

func (p *Provider) authenticate(call func() (*client.LoginResponse, error)) error {
	p.mu.Lock()
	if p.pending {
		p.mu.Unlock()
		return ErrLoginInProgress
	}
	p.pending = true
	p.mu.Unlock()

	resp, err := call()

	p.mu.Lock()
	p.pending = false
	p.mu.Unlock()

	if err != nil {
		p.update(func(s *State) {
			s.IsAuthenticated = false
			s.User = nil
		})
		return err
	}

	user := resp.User
	p.update(func(s *State) {
		s.IsAuthenticated = true
		s.User = &user
	})
	return nil
}

// Logout forgets the token and signs out. It cannot fail.
func (p *Provider) Logout() {
	if err := p.svc.Logout(); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to clear token during logout")
	}
	p.update(func(s *State) {
		s.IsAuthenticated = false
		s.User = nil
	})
}

// update applies fn under the lock and notifies listeners outside it
func (p *Provider) update(fn func(*State)) {
	p.mu.Lock()
	fn(&p.state)
	snap := p.snapshot()
	listeners := append([]func(State){}, p.listeners...)
	p.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

// snapshot copies the state; callers hold the lock
func (p *Provider) snapshot() State {
	s := p.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
