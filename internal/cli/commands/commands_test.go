package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchd-dev/starter/internal/cli/auth"
	"github.com/branchd-dev/starter/internal/cli/client"
)

var testUser = client.User{ID: "user-123", Name: "Test User", Email: "test@example.com"}

// mockAPIServer accepts test@example.com / password123 and issues test-token-abc
func mockAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer test-token-abc"
	}
	unauthorized := func(w http.ResponseWriter) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "Invalid or expired token"}`))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req client.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email != testUser.Email || req.Password != "password123" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error": "Invalid email or password"}`))
			return
		}
		json.NewEncoder(w).Encode(client.LoginResponse{Token: "test-token-abc", User: testUser})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			unauthorized(w)
			return
		}
		json.NewEncoder(w).Encode(testUser)
	})
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			unauthorized(w)
			return
		}
		json.NewEncoder(w).Encode([]client.User{testUser})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// newTestRoot mounts the commands under a root carrying the persistent flags
func newTestRoot(opts *Options) *cobra.Command {
	root := &cobra.Command{Use: "starter", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().StringVar(&opts.APIURL, "api-url", "", "")
	root.PersistentFlags().StringVar(&opts.TokenStore, "token-store", "", "")
	root.AddCommand(
		NewLoginCmd(opts),
		NewRegisterCmd(opts),
		NewLogoutCmd(opts),
		NewWhoamiCmd(opts),
		NewRefreshCmd(opts),
		NewOpenCmd(opts),
		NewUsersCmd(opts),
		NewConfigCmd(opts),
	)
	return root
}

// run executes the commands with args against server, sharing store across calls
func run(t *testing.T, server *httptest.Server, store auth.TokenStore, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newTestRoot(&Options{Store: store})
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--api-url", server.URL}, args...))

	err := root.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STARTER_EMAIL", "")
	t.Setenv("STARTER_PASSWORD", "")
	t.Setenv("STARTER_API_URL", "")
	t.Setenv("STARTER_TOKEN_STORE", "")
	t.Setenv("STARTER_LOG_LEVEL", "off")
	t.Chdir(t.TempDir())
}

func TestLoginCommand_SuccessfulLogin(t *testing.T) {
	setupEnv(t)
	server := mockAPIServer(t)
	store := auth.NewMemoryStore()

	out, err := run(t, server, store, "login", "--email", "test@example.com", "--password", "password123")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Login successful!")
	assert.Contains(t, out, "Test User (test@example.com)")

	token, ok, _ := store.Get()
	assert.True(t, ok)
	assert.Equal(t, "test-token-abc", token)

	out, err = run(t, server, store, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Test User (test@example.com)")
}

func TestLoginCommand_MissingEmail(t *testing.T) {
	setupEnv(t)
	server := mockAPIServer(t)

	_, err := run(t, server, auth.NewMemoryStore(), "login", "--password", "password123")
	require.Error(t, err)
	assert.Equal(t, "email is required (use --email flag or STARTER_EMAIL env var)", err.Error())
}

func TestLoginCommand_NonInteractiveWithoutPassword(t *testing.T) {
	setupEnv(t)
	server := mockAPIServer(t)

	_, err := run(t, server, auth.NewMemoryStore(), "login", "--email", "test@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password is required in non-interactive mode")
}

func TestLoginCommand_BadCredentials(t *testing.T) {
	setupEnv(t)
	server := mockAPIServer(t)
	store := auth.NewMemoryStore()

	_, err := run(t, server, store, "login", "--email", "bad@x.com", "--password", "wrong-password")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")
	assert.Contains(t, err.Error(), "Invalid email or password")

	_, ok, _ := store.Get()
	assert.False(t, ok)
}

func TestLoginCommand_EnvVarCredentials(t *testing.T) {
	setupEnv(t)
	server := mockAPIServer(t)
	t.Setenv("STARTER_EMAIL", "test@example.com")
	t.Setenv("STARTER_PASSWORD", "password123")

	out, err := run(t, server, auth.NewMemoryStore(), "login")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Login successful!")
}

func TestOpenCommand_GuardedRoute(t *testing.T) {
	setupEnv(t)
	server := mockAPIServer(t)
	store := auth.NewMemoryStore()

	_, err := run(t, server, store, "open", "/routing/items")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires authentication")
	assert.Contains(t, err.Error(), "--redirect /routing/items")

	// With credentials in the environment the login form is submitted and
	// the original page is shown
	t.Setenv("STARTER_EMAIL", "test@example.com")
	t.Setenv("STARTER_PASSWORD", "password123")

	out, err := run(t, server, store, "open", "/routing/items")
	require.NoError(t, err)
	assert.Contains(t, out, "== Login ==")
	assert.Contains(t, out, "== Items ==")
	assert.Contains(t, out, "/routing/items/electronics")
}

func TestUsersCommand_RequiresSession(t *testing.T) {
	setupEnv(t)
	server := mockAPIServer(t)
	store := auth.NewMemoryStore()

	out, err := run(t, server, store, "users", "ls")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires authentication")
	assert.Contains(t, out, "== Login ==", "anonymous visitors land on the login page")

	_, err = run(t, server, store, "login", "--email", "test@example.com", "--password", "password123")
	require.NoError(t, err)

	out, err = run(t, server, store, "users", "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "user-123")
	assert.True(t, strings.Contains(out, "EMAIL"))
}

func TestLogoutCommand(t *testing.T) {
	setupEnv(t)
	server := mockAPIServer(t)
	store := auth.NewMemoryStore()

	_, err := run(t, server, store, "login", "--email", "test@example.com", "--password", "password123")
	require.NoError(t, err)

	out, err := run(t, server, store, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Logged out")

	_, ok, _ := store.Get()
	assert.False(t, ok)

	_, err = run(t, server, store, "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authenticated")

	// Logging out twice is fine
	_, err = run(t, server, store, "logout")
	require.NoError(t, err)
}

func TestConfigCommands(t *testing.T) {
	setupEnv(t)
	server := mockAPIServer(t)

	_, err := run(t, server, auth.NewMemoryStore(), "config", "set-url", "not a url")
	require.Error(t, err)

	out, err := run(t, server, auth.NewMemoryStore(), "config", "set-url", "http://saved.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "http://saved.example.com")

	out, err = run(t, server, auth.NewMemoryStore(), "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, server.URL, "flag wins over saved URL")
	assert.Contains(t, out, "Token store: keyring")
}

func TestLoginCommand_RedirectToUnknownPage(t *testing.T) {
	setupEnv(t)
	server := mockAPIServer(t)
	store := auth.NewMemoryStore()

	out, err := run(t, server, store, "login", "--email", "test@example.com", "--password", "password123", "--redirect", "/nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not open /nope")
	assert.NotContains(t, err.Error(), "login failed")
	assert.Contains(t, out, "✓ Login successful!")

	token, ok, _ := store.Get()
	assert.True(t, ok)
	assert.Equal(t, "test-token-abc", token)
}

func TestRegisterCommand_InvalidForm(t *testing.T) {
	setupEnv(t)
	server := mockAPIServer(t)

	_, err := run(t, server, auth.NewMemoryStore(), "register", "--name", "New", "--email", "not-an-email", "--password", "secret1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registration failed: invalid input")
	assert.Contains(t, err.Error(), "Please enter a valid email address")
}
