package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringStore persists the token in the OS keychain/credential manager
type KeyringStore struct {
	service string
}

// NewKeyringStore returns a store scoped to the given keyring service name.
// An empty name selects the default service.
func NewKeyringStore(serviceName string) *KeyringStore {
	if serviceName == "" {
		serviceName = service
	}
	return &KeyringStore{service: serviceName}
}

func (k *KeyringStore) Get() (string, bool, error) {
	token, err := keyring.Get(k.service, TokenKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load token: %w", err)
	}
	if token == "" {
		return "", false, nil
	}
	return token, true, nil
}

func (k *KeyringStore) Set(token string) error {
	if err := keyring.Set(k.service, TokenKey, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (k *KeyringStore) Clear() error {
	if err := keyring.Delete(k.service, TokenKey); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
