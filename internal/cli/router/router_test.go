package router

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchd-dev/starter/internal/cli/client"
	"github.com/branchd-dev/starter/internal/cli/session"
)

type staticState struct {
	state session.State
}

func (s *staticState) State() session.State {
	return s.state
}

func newTestRouter(sessions StateReader) *Router {
	return New(
		&Route{Path: "/", Title: "Home"},
		&Route{Path: "/about", Title: "About"},
		&Route{Path: "/login", Title: "Login"},
		&Route{Path: "/routing/items", Title: "Items", BeforeLoad: []Hook{RequireAuth(sessions)}},
		&Route{Path: "/routing/items/books", Title: "Books"},
	)
}

func TestNavigate_PublicRoute(t *testing.T) {
	r := newTestRouter(&staticState{})

	route, loc, err := r.Navigate(context.Background(), "/about/")
	require.NoError(t, err)
	assert.Equal(t, "About", route.Title)
	assert.Equal(t, "/about", loc.Path)

	current, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, "/about", current.Path)
}

func TestNavigate_GuardRedirectsAnonymous(t *testing.T) {
	r := newTestRouter(&staticState{})

	route, loc, err := r.Navigate(context.Background(), "/routing/items")
	require.NoError(t, err)
	assert.Equal(t, "Login", route.Title)
	assert.Equal(t, LoginPath, loc.Path)
	assert.Equal(t, "/routing/items", loc.Search.Get(RedirectParam))
	assert.Equal(t, "/routing/items", RedirectTarget(loc.Search))

	// Only the final location is recorded
	require.Len(t, r.History(), 1)
}

func TestNavigate_GuardCoversChildren(t *testing.T) {
	r := newTestRouter(&staticState{})

	_, loc, err := r.Navigate(context.Background(), "/routing/items/books?page=2")
	require.NoError(t, err)
	assert.Equal(t, LoginPath, loc.Path)
	assert.Equal(t, "/routing/items/books?page=2", RedirectTarget(loc.Search))
}

func TestNavigate_GuardAllowsAuthenticated(t *testing.T) {
	sessions := &staticState{state: session.State{
		IsAuthenticated: true,
		User:            &client.User{ID: "1"},
	}}
	r := newTestRouter(sessions)

	route, loc, err := r.Navigate(context.Background(), "/routing/items/books")
	require.NoError(t, err)
	assert.Equal(t, "Books", route.Title)
	assert.Equal(t, "/routing/items/books", loc.Path)
}

func TestNavigate_NotFound(t *testing.T) {
	r := newTestRouter(&staticState{})

	_, _, err := r.Navigate(context.Background(), "/nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = r.Navigate(context.Background(), "https://evil.example.com/")
	assert.Error(t, err)
}

func TestNavigate_HookErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	r := New(&Route{Path: "/x", BeforeLoad: []Hook{func(context.Context, Location) error { return boom }}})

	_, _, err := r.Navigate(context.Background(), "/x")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, r.History())
}

func TestNavigate_RedirectLoop(t *testing.T) {
	r := New(
		&Route{Path: "/a", BeforeLoad: []Hook{func(context.Context, Location) error { return &Redirect{To: "/b"} }}},
		&Route{Path: "/b", BeforeLoad: []Hook{func(context.Context, Location) error { return &Redirect{To: "/a"} }}},
	)

	_, _, err := r.Navigate(context.Background(), "/a")
	assert.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestRedirectTarget(t *testing.T) {
	tests := []struct {
		name     string
		redirect string
		expected string
	}{
		{name: "missing", redirect: "", expected: "/"},
		{name: "local path", redirect: "/routing/items", expected: "/routing/items"},
		{name: "protocol relative", redirect: "//evil.example.com", expected: "/"},
		{name: "absolute url", redirect: "https://evil.example.com", expected: "/"},
		{name: "relative", redirect: "about", expected: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := url.Values{}
			if tt.redirect != "" {
				search.Set(RedirectParam, tt.redirect)
			}
			assert.Equal(t, tt.expected, RedirectTarget(search))
		})
	}
}

func TestRoutes_Sorted(t *testing.T) {
	r := newTestRouter(&staticState{})
	routes := r.Routes()
	require.Len(t, routes, 5)
	assert.Equal(t, "/", routes[0].Path)
	assert.Equal(t, "/routing/items/books", routes[4].Path)
}
