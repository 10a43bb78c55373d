package router

import (
	"context"
	"net/url"
	"strings"

	"github.com/branchd-dev/starter/internal/cli/session"
)

const (
	// LoginPath is where unauthenticated visitors are sent
	LoginPath = "/login"

	// RedirectParam carries the originally requested location to the login page
	RedirectParam = "redirect"
)

// StateReader exposes the current session state
type StateReader interface {
	State() session.State
}

// RequireAuth returns a hook that sends unauthenticated visitors to the login
// page, remembering where they were going
func RequireAuth(sessions StateReader) Hook {
	return func(_ context.Context, to Location) error {
		if sessions.State().IsAuthenticated {
			return nil
		}
		return &Redirect{
			To:     LoginPath,
			Search: url.Values{RedirectParam: []string{to.String()}},
		}
	}
}

// RedirectTarget returns where to go after a successful login. Only local
// application paths are honoured; anything else falls back to "/".
func RedirectTarget(search url.Values) string {
	target := search.Get(RedirectParam)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return "/"
	}
	if _, err := ParseLocation(target); err != nil {
		return "/"
	}
	return target
}
