package client

import (
	"context"
	"net/http"
	"net/url"
)

// ListUsers returns all users
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.Do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns a user by ID
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.Do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser patches a user's profile
func (c *Client) UpdateUser(ctx context.Context, id string, update UpdateUserRequest) (*User, error) {
	var user User
	if err := c.Do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser deletes a user by ID
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.Do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}
