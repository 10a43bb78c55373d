// Package app is the composition root of the client: it wires the token
// store, API client, auth service, session and router into one application
// instance, and reloads that instance when the API client forces a hard
// redirect.
package app

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"github.com/branchd-dev/starter/internal/cli/auth"
	"github.com/branchd-dev/starter/internal/cli/authservice"
	"github.com/branchd-dev/starter/internal/cli/client"
	"github.com/branchd-dev/starter/internal/cli/router"
	"github.com/branchd-dev/starter/internal/cli/session"
)

// Config holds what an App needs to start
type Config struct {
	BaseURL string
	Store   auth.TokenStore
	Out     io.Writer
	Logger  zerolog.Logger

	// ClientOptions are passed through to the API client
	ClientOptions []client.Option
}

// App is one running instance of the application. The session and router
// live only as long as the instance; a hard redirect replaces both.
type App struct {
	out    io.Writer
	logger zerolog.Logger
	store  auth.TokenStore
	client *client.Client
	auth   *authservice.Service

	mu      sync.Mutex
	session *session.Provider
	router  *router.Router
	reload  *string
	loads   int
}

// New builds an App. Call Start before navigating.
func New(cfg Config) *App {
	a := &App{
		out:    cfg.Out,
		logger: cfg.Logger,
		store:  cfg.Store,
	}
	if a.out == nil {
		a.out = io.Discard
	}

	opts := append([]client.Option{client.WithLogger(cfg.Logger)}, cfg.ClientOptions...)
	a.client = client.New(cfg.BaseURL, cfg.Store, a, opts...)
	a.auth = authservice.New(a.client, cfg.Store)
	return a
}

// Start performs the initial page load: a fresh session is rehydrated from
// the token store while a loading placeholder is shown
func (a *App) Start(ctx context.Context) error {
	a.boot(ctx)
	_, _, err := a.settle(ctx)
	return err
}

func (a *App) boot(ctx context.Context) {
	provider := session.NewProvider(a.auth, a.logger)
	provider.Subscribe(func(s session.State) {
		if s.IsLoading {
			fmt.Fprintln(a.out, "Loading session...")
		}
	})

	a.mu.Lock()
	a.session = provider
	a.router = a.newRouter(provider)
	a.loads++
	a.mu.Unlock()

	provider.Init(ctx)
}

// HardRedirect schedules a full reload at path. It takes effect once the
// current operation returns, as a browser navigation would.
func (a *App) HardRedirect(path string) {
	a.mu.Lock()
	a.reload = &path
	a.mu.Unlock()
}

// Session returns the current session provider
func (a *App) Session() *session.Provider {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Router returns the current router
func (a *App) Router() *router.Router {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.router
}

// Client returns the shared API client
func (a *App) Client() *client.Client {
	return a.client
}

// Auth returns the auth service
func (a *App) Auth() *authservice.Service {
	return a.auth
}

// Loads counts how many times the application has been (re)loaded
func (a *App) Loads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loads
}

// Open navigates to path and renders the page that ends up being shown
func (a *App) Open(ctx context.Context, path string) (router.Location, error) {
	route, loc, err := a.Router().Navigate(ctx, path)
	if err != nil {
		return loc, err
	}

	renderErr := a.render(ctx, route, loc)
	if next, reloaded, err := a.settle(ctx); reloaded {
		if err == nil {
			err = renderErr
		}
		return next, err
	}
	return loc, renderErr
}

// SubmitLogin validates the form, signs in and continues to the page the
// visitor was sent away from (or "/")
func (a *App) SubmitLogin(ctx context.Context, form LoginForm, search url.Values) (router.Location, error) {
	if err := Validate(form); err != nil {
		return router.Location{}, err
	}
	if err := a.Session().Login(ctx, form.Email, form.Password); err != nil {
		// A rejected attempt may have forced a reload back to the login page
		loc, _, _ := a.settle(ctx)
		return loc, err
	}
	return a.Open(ctx, router.RedirectTarget(search))
}

// SubmitRegister validates the form, creates the account and continues like
// SubmitLogin
func (a *App) SubmitRegister(ctx context.Context, form RegisterForm, search url.Values) (router.Location, error) {
	if err := Validate(form); err != nil {
		return router.Location{}, err
	}
	if err := a.Session().Register(ctx, form.Name, form.Email, form.Password); err != nil {
		// A rejected attempt may have forced a reload back to the login page
		loc, _, _ := a.settle(ctx)
		return loc, err
	}
	return a.Open(ctx, router.RedirectTarget(search))
}

// Logout signs out and returns to the home page
func (a *App) Logout(ctx context.Context) (router.Location, error) {
	a.Session().Logout()
	return a.Open(ctx, "/")
}

// settle performs a pending hard redirect: all in-memory state is dropped,
// the application boots again and lands on the requested path
func (a *App) settle(ctx context.Context) (router.Location, bool, error) {
	a.mu.Lock()
	target := a.reload
	a.reload = nil
	a.mu.Unlock()

	if target == nil {
		return router.Location{}, false, nil
	}

	a.logger.Debug().Str("path", *target).Msg("Reloading application")
	a.boot(ctx)

	route, loc, err := a.Router().Navigate(ctx, *target)
	if err != nil {
		return loc, true, err
	}
	return loc, true, a.render(ctx, route, loc)
}

func (a *App) render(ctx context.Context, route *router.Route, loc router.Location) error {
	fmt.Fprintf(a.out, "== %s ==\n", route.Title)
	if route.Render == nil {
		return nil
	}
	return route.Render(ctx, a.out, loc)
}
