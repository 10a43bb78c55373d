package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/branchd-dev/starter/internal/cli/router"
	"github.com/branchd-dev/starter/internal/cli/session"
)

var itemCategories = []struct {
	slug  string
	title string
}{
	{"electronics", "Electronics"},
	{"gaming", "Gaming"},
	{"clothing", "Clothing"},
	{"books", "Books"},
}

// newRouter builds the route table for one application instance
func (a *App) newRouter(sessions *session.Provider) *router.Router {
	requireAuth := router.RequireAuth(sessions)

	r := router.New(
		&router.Route{Path: "/", Title: "Home", Render: a.renderHome(sessions)},
		&router.Route{Path: "/about", Title: "About", Render: staticPage(
			"A starter kit showing routing, form handling and authenticated API calls.",
		)},
		&router.Route{Path: "/tech-stack", Title: "Tech Stack", Render: staticPage(
			"cobra CLI, resty API client, gin + gorm demo backend, JWT bearer tokens.",
		)},
		&router.Route{Path: "/form", Title: "Form Template", Render: staticPage(
			"Fields: Name (required), Email (valid address), Password (6+ characters).",
			"Submit it with: starter register",
		)},
		&router.Route{Path: router.LoginPath, Title: "Login", Render: renderLogin},
		&router.Route{Path: "/profile", Title: "Profile", BeforeLoad: []router.Hook{requireAuth}, Render: a.renderProfile(sessions)},
		&router.Route{Path: "/users", Title: "Users", BeforeLoad: []router.Hook{requireAuth}, Render: a.renderUsers},
		&router.Route{Path: "/routing/items", Title: "Items", BeforeLoad: []router.Hook{requireAuth}, Render: renderItemIndex},
	)

	for _, c := range itemCategories {
		r.Add(&router.Route{
			Path:   "/routing/items/" + c.slug,
			Title:  c.title,
			Render: staticPage(fmt.Sprintf("Browsing %s.", c.title)),
		})
	}

	return r
}

func staticPage(lines ...string) func(context.Context, io.Writer, router.Location) error {
	return func(_ context.Context, w io.Writer, _ router.Location) error {
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
		return nil
	}
}

func (a *App) renderHome(sessions *session.Provider) func(context.Context, io.Writer, router.Location) error {
	return func(_ context.Context, w io.Writer, _ router.Location) error {
		state := sessions.State()
		if state.IsAuthenticated && state.User != nil {
			fmt.Fprintf(w, "Signed in as %s (%s)\n", state.User.Name, state.User.Email)
		} else {
			fmt.Fprintln(w, "You are not signed in. Run: starter login")
		}
		return nil
	}
}

func renderLogin(_ context.Context, w io.Writer, loc router.Location) error {
	fmt.Fprintln(w, "Sign in to your account")
	if target := router.RedirectTarget(loc.Search); target != "/" {
		fmt.Fprintf(w, "You will continue to %s after signing in.\n", target)
	}
	return nil
}

func (a *App) renderProfile(sessions *session.Provider) func(context.Context, io.Writer, router.Location) error {
	return func(_ context.Context, w io.Writer, _ router.Location) error {
		state := sessions.State()
		if state.User == nil {
			return fmt.Errorf("no user loaded")
		}
		fmt.Fprintf(w, "  ID:    %s\n", state.User.ID)
		fmt.Fprintf(w, "  Name:  %s\n", state.User.Name)
		fmt.Fprintf(w, "  Email: %s\n", state.User.Email)
		return nil
	}
}

func (a *App) renderUsers(ctx context.Context, w io.Writer, _ router.Location) error {
	users, err := a.client.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL")
	fmt.Fprintln(tw, "──\t────\t─────")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Name, u.Email)
	}
	return tw.Flush()
}

func renderItemIndex(_ context.Context, w io.Writer, _ router.Location) error {
	fmt.Fprintln(w, "Categories:")
	for _, c := range itemCategories {
		fmt.Fprintf(w, "  /routing/items/%s\t%s\n", c.slug, c.title)
	}
	return nil
}
