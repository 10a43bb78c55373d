// Package authservice performs the auth calls against the backend. Every call
// that yields a token persists it in the token store.
package authservice

import (
	"context"
	"fmt"
	"net/http"

	"github.com/branchd-dev/starter/internal/cli/auth"
	"github.com/branchd-dev/starter/internal/cli/client"
)

// Service is stateless apart from its token store side effects
type Service struct {
	client *client.Client
	store  auth.TokenStore
}

// New creates an auth service over the shared API client
func New(c *client.Client, store auth.TokenStore) *Service {
	return &Service{client: c, store: store}
}

// Login authenticates with email and password and stores the returned token
func (s *Service) Login(ctx context.Context, email, password string) (*client.LoginResponse, error) {
	var resp client.LoginResponse
	req := client.LoginRequest{Email: email, Password: password}
	if err := s.client.Do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}

	if err := s.storeSession(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and stores the returned token
func (s *Service) Register(ctx context.Context, name, email, password string) (*client.LoginResponse, error) {
	var resp client.LoginResponse
	req := client.RegisterRequest{Name: name, Email: email, Password: password}
	if err := s.client.Do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}

	if err := s.storeSession(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout forgets the token. The backend is not contacted.
func (s *Service) Logout() error {
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear authentication token: %w", err)
	}
	return nil
}

// GetCurrentUser returns the user the stored token belongs to
func (s *Service) GetCurrentUser(ctx context.Context) (*client.User, error) {
	var user client.User
	if err := s.client.Do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RefreshToken exchanges the current token for a new one
func (s *Service) RefreshToken(ctx context.Context) (*client.RefreshResponse, error) {
	var resp client.RefreshResponse
	if err := s.client.Do(ctx, http.MethodPost, "/auth/refresh", nil, &resp); err != nil {
		return nil, err
	}

	if err := s.saveToken(resp.Token); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HasToken reports whether a token is currently stored
func (s *Service) HasToken() (bool, error) {
	_, ok, err := s.store.Get()
	if err != nil {
		return false, fmt.Errorf("failed to load authentication token: %w", err)
	}
	return ok, nil
}

// storeSession saves the token of a login or registration response, which
// must carry both a token and a user
func (s *Service) storeSession(resp *client.LoginResponse) error {
	if resp.Token == "" || resp.User.ID == "" {
		return &client.APIError{Kind: client.ErrServer, StatusCode: http.StatusOK, Message: "response carried no session"}
	}
	return s.saveToken(resp.Token)
}

func (s *Service) saveToken(token string) error {
	if token == "" {
		return nil
	}
	if err := s.store.Set(token); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}
	return nil
}
