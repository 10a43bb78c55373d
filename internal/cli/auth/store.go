package auth

const (
	service = "starter-cli"

	// TokenKey is the single well-known key the session token lives under
	TokenKey = "auth_token"
)

// TokenStore holds at most one bearer token. Implementations are whole-value
// get/set, so concurrent callers never observe a partially written token.
type TokenStore interface {
	// Get returns the stored token; ok is false when none is stored
	Get() (token string, ok bool, err error)
	Set(token string) error
	// Clear removes the token. Clearing an empty store is not an error.
	Clear() error
}
