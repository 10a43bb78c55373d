package auth

import (
	"fmt"
	"strings"
)

// Store backends selectable via STARTER_TOKEN_STORE
const (
	BackendKeyring = "keyring"
	BackendFile    = "file"
	BackendMemory  = "memory"
)

// Open returns the TokenStore for the named backend. An empty name selects
// the keyring; the file backend writes under dir.
func Open(backend, dir string) (TokenStore, error) {
	switch strings.ToLower(backend) {
	case "", BackendKeyring:
		return NewKeyringStore(""), nil
	case BackendFile:
		return NewFileStore(dir), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown token store %q (expected keyring, file or memory)", backend)
	}
}
