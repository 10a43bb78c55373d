// Package router resolves application paths to routes, running each route's
// BeforeLoad hooks (and those of its ancestors) before entering it.
package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
)

const maxRedirects = 5

var (
	ErrNotFound         = errors.New("route not found")
	ErrTooManyRedirects = errors.New("too many redirects")
)

// Location is a resolved application path
type Location struct {
	Path   string
	Search url.Values
}

func (l Location) String() string {
	if len(l.Search) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Search.Encode()
}

// ParseLocation splits a path with an optional query string
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("invalid path %q: %w", raw, err)
	}
	if u.IsAbs() || u.Host != "" {
		return Location{}, fmt.Errorf("invalid path %q: must be an application path", raw)
	}
	return Location{Path: cleanPath(u.Path), Search: u.Query()}, nil
}

// Hook runs before a route is entered. Returning a *Redirect sends the
// navigation elsewhere; any other error aborts it.
type Hook func(ctx context.Context, to Location) error

// Redirect aborts a navigation in favour of another location
type Redirect struct {
	To     string
	Search url.Values
}

func (r *Redirect) Error() string {
	return "redirect to " + r.Location().String()
}

// Location returns the redirect target
func (r *Redirect) Location() Location {
	return Location{Path: cleanPath(r.To), Search: r.Search}
}

// Route is a page of the application
type Route struct {
	Path       string
	Title      string
	BeforeLoad []Hook
	Render     func(ctx context.Context, w io.Writer, loc Location) error
}

// Router holds the route table and the navigation history
type Router struct {
	mu      sync.Mutex
	routes  map[string]*Route
	history []Location
}

// New creates a router with the given routes
func New(routes ...*Route) *Router {
	r := &Router{routes: make(map[string]*Route)}
	for _, route := range routes {
		r.Add(route)
	}
	return r
}

// Add registers a route, replacing any route with the same path
func (r *Router) Add(route *Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route.Path = cleanPath(route.Path)
	r.routes[route.Path] = route
}

// Routes lists the registered routes sorted by path
func (r *Router) Routes() []*Route {
	r.mu.Lock()
	defer r.mu.Unlock()

	routes := make([]*Route, 0, len(r.routes))
	for _, route := range r.routes {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Path < routes[j].Path
	})
	return routes
}

// Current returns the location last navigated to
func (r *Router) Current() (Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.history) == 0 {
		return Location{}, false
	}
	return r.history[len(r.history)-1], true
}

// History returns every location entered, oldest first
func (r *Router) History() []Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Location(nil), r.history...)
}

// Navigate resolves to, follows redirects raised by BeforeLoad hooks and
// records the final location. Hooks of parent routes run before the child's.
func (r *Router) Navigate(ctx context.Context, to string) (*Route, Location, error) {
	loc, err := ParseLocation(to)
	if err != nil {
		return nil, Location{}, err
	}

	for hops := 0; hops <= maxRedirects; hops++ {
		route, hooks, ok := r.match(loc.Path)
		if !ok {
			return nil, loc, fmt.Errorf("%w: %s", ErrNotFound, loc.Path)
		}

		redirect, err := runHooks(ctx, hooks, loc)
		if err != nil {
			return nil, loc, err
		}
		if redirect != nil {
			loc = redirect.Location()
			continue
		}

		r.mu.Lock()
		r.history = append(r.history, loc)
		r.mu.Unlock()
		return route, loc, nil
	}

	return nil, loc, ErrTooManyRedirects
}

func runHooks(ctx context.Context, hooks []Hook, loc Location) (*Redirect, error) {
	for _, hook := range hooks {
		err := hook(ctx, loc)
		if err == nil {
			continue
		}
		var redirect *Redirect
		if errors.As(err, &redirect) {
			return redirect, nil
		}
		return nil, err
	}
	return nil, nil
}

// match finds the route for path and collects the hooks of every registered
// ancestor, outermost first
func (r *Router) match(path string) (*Route, []Hook, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	route, ok := r.routes[path]
	if !ok {
		return nil, nil, false
	}

	var hooks []Hook
	for _, prefix := range ancestors(path) {
		if parent, ok := r.routes[prefix]; ok {
			hooks = append(hooks, parent.BeforeLoad...)
		}
	}
	hooks = append(hooks, route.BeforeLoad...)
	return route, hooks, true
}

// ancestors returns the proper path prefixes of p, e.g. /a/b/c yields
// /, /a, /a/b
func ancestors(p string) []string {
	if p == "/" {
		return nil
	}
	prefixes := []string{"/"}
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i := 1; i < len(segments); i++ {
		prefixes = append(prefixes, "/"+strings.Join(segments[:i], "/"))
	}
	return prefixes
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}
