package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchd-dev/starter/internal/cli/client"
)

var errBadCredentials = &client.APIError{Kind: client.ErrUnauthorized, StatusCode: 401, Message: "Invalid email or password"}

// fakeAuth is an in-memory Authenticator
type fakeAuth struct {
	mu       sync.Mutex
	token    string
	user     client.User
	meErr    error
	meCalls  int
	block    chan struct{} // when set, Login waits on it
	entered  chan struct{}
	password string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		user:     client.User{ID: "1", Name: "Demo User", Email: "demo@example.com"},
		password: "demo123",
	}
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*client.LoginResponse, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if email != f.user.Email || password != f.password {
		return nil, errBadCredentials
	}
	f.mu.Lock()
	f.token = "tok"
	f.mu.Unlock()
	return &client.LoginResponse{Token: "tok", User: f.user}, nil
}

func (f *fakeAuth) Register(ctx context.Context, name, email, password string) (*client.LoginResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = "tok"
	return &client.LoginResponse{Token: "tok", User: client.User{ID: "2", Name: name, Email: email}}, nil
}

func (f *fakeAuth) Logout() error {
	f.mu.Lock()
	f.token = ""
	f.mu.Unlock()
	return nil
}

func (f *fakeAuth) GetCurrentUser(ctx context.Context) (*client.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := f.user
	return &u, nil
}

func (f *fakeAuth) HasToken() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token != "", nil
}

func (f *fakeAuth) storedToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func recordStates(p *Provider) *[]State {
	var states []State
	p.Subscribe(func(s State) {
		states = append(states, s)
	})
	return &states
}

func TestInit_NoToken(t *testing.T) {
	fake := newFakeAuth()
	p := NewProvider(fake, zerolog.Nop())
	assert.Equal(t, Unknown, p.Status())

	states := recordStates(p)
	p.Init(context.Background())

	assert.Equal(t, Anonymous, p.Status())
	assert.Equal(t, 0, fake.meCalls, "no token means no rehydration call")
	require.Len(t, *states, 1)
	assert.False(t, (*states)[0].IsLoading)
}

func TestInit_ValidToken(t *testing.T) {
	fake := newFakeAuth()
	fake.token = "stored"
	p := NewProvider(fake, zerolog.Nop())

	states := recordStates(p)
	p.Init(context.Background())

	require.Len(t, *states, 2)
	assert.True(t, (*states)[0].IsLoading)
	assert.True(t, (*states)[0].IsAuthenticated, "optimistically authenticated while loading")
	assert.False(t, (*states)[1].IsLoading)

	state := p.State()
	assert.Equal(t, Authenticated, state.Status())
	require.NotNil(t, state.User)
	assert.Equal(t, fake.user, *state.User)
}

func TestInit_RejectedToken(t *testing.T) {
	fake := newFakeAuth()
	fake.token = "expired"
	fake.meErr = &client.APIError{Kind: client.ErrUnauthorized, StatusCode: 401, Message: "Invalid or expired token"}
	p := NewProvider(fake, zerolog.Nop())

	p.Init(context.Background())

	state := p.State()
	assert.Equal(t, Anonymous, state.Status())
	assert.Nil(t, state.User)
	assert.False(t, state.IsLoading)
	assert.Empty(t, fake.storedToken(), "rejected token is cleared")
}

func TestInit_UnreachableBackendKeepsToken(t *testing.T) {
	fake := newFakeAuth()
	fake.token = "stored"
	fake.meErr = &client.APIError{Kind: client.ErrNetwork, Message: "GET /auth/me failed"}
	p := NewProvider(fake, zerolog.Nop())

	p.Init(context.Background())

	state := p.State()
	assert.Equal(t, Anonymous, state.Status())
	assert.Nil(t, state.User)
	assert.False(t, state.IsLoading)
	assert.Equal(t, "stored", fake.storedToken(), "a token the backend never saw is kept")
}

func TestInit_RunsOnce(t *testing.T) {
	fake := newFakeAuth()
	fake.token = "stored"
	p := NewProvider(fake, zerolog.Nop())

	p.Init(context.Background())
	p.Init(context.Background())

	assert.Equal(t, 1, fake.meCalls)
}

func TestLogin(t *testing.T) {
	fake := newFakeAuth()
	p := NewProvider(fake, zerolog.Nop())
	p.Init(context.Background())

	require.NoError(t, p.Login(context.Background(), "demo@example.com", "demo123"))

	state := p.State()
	assert.Equal(t, Authenticated, state.Status())
	require.NotNil(t, state.User)
	assert.Equal(t, "Demo User", state.User.Name)
}

func TestLogin_BadCredentials(t *testing.T) {
	fake := newFakeAuth()
	p := NewProvider(fake, zerolog.Nop())
	p.Init(context.Background())

	err := p.Login(context.Background(), "bad@x.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrUnauthorized))

	assert.Equal(t, Anonymous, p.Status())
	assert.Nil(t, p.State().User)
	assert.Empty(t, fake.storedToken())
}

func TestLogin_RejectsConcurrentAttempt(t *testing.T) {
	fake := newFakeAuth()
	fake.block = make(chan struct{})
	fake.entered = make(chan struct{}, 1)
	p := NewProvider(fake, zerolog.Nop())
	p.Init(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- p.Login(context.Background(), "demo@example.com", "demo123")
	}()
	<-fake.entered

	err := p.Login(context.Background(), "demo@example.com", "demo123")
	assert.ErrorIs(t, err, ErrLoginInProgress)

	close(fake.block)
	require.NoError(t, <-done)
	assert.Equal(t, Authenticated, p.Status())
}

func TestRegister(t *testing.T) {
	fake := newFakeAuth()
	p := NewProvider(fake, zerolog.Nop())
	p.Init(context.Background())

	require.NoError(t, p.Register(context.Background(), "New User", "new@example.com", "secret1"))

	state := p.State()
	assert.Equal(t, Authenticated, state.Status())
	assert.Equal(t, "new@example.com", state.User.Email)
}

func TestLogout_Idempotent(t *testing.T) {
	fake := newFakeAuth()
	p := NewProvider(fake, zerolog.Nop())
	p.Init(context.Background())
	require.NoError(t, p.Login(context.Background(), "demo@example.com", "demo123"))

	p.Logout()
	assert.Equal(t, Anonymous, p.Status())
	assert.Empty(t, fake.storedToken())

	before := p.State()
	p.Logout()
	assert.Equal(t, before, p.State())
}

func TestState_ReturnsCopy(t *testing.T) {
	fake := newFakeAuth()
	p := NewProvider(fake, zerolog.Nop())
	p.Init(context.Background())
	require.NoError(t, p.Login(context.Background(), "demo@example.com", "demo123"))

	state := p.State()
	state.User.Name = "mutated"
	assert.Equal(t, "Demo User", p.State().User.Name)
}
