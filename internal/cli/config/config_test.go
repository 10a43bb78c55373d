package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchd-dev/starter/internal/cli/userconfig"
)

func setupHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STARTER_API_URL", "")
	t.Setenv("STARTER_TOKEN_STORE", "")
	t.Setenv("STARTER_LOG_LEVEL", "")
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	setupHome(t)

	s, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, s.APIURL)
	assert.Empty(t, s.TokenStore)
	assert.Equal(t, "warn", s.LogLevel)
}

func TestLoad_Precedence(t *testing.T) {
	setupHome(t)
	require.NoError(t, userconfig.SetAPIURL("http://saved.example.com"))

	s, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "http://saved.example.com", s.APIURL)

	t.Setenv("STARTER_API_URL", "http://env.example.com/")
	t.Setenv("STARTER_TOKEN_STORE", "file")
	s, err = Load("", "")
	require.NoError(t, err)
	assert.Equal(t, "http://env.example.com", s.APIURL)
	assert.Equal(t, "file", s.TokenStore)

	s, err = Load("https://flag.example.com", "memory")
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example.com", s.APIURL)
	assert.Equal(t, "memory", s.TokenStore)
}

func TestValidateAPIURL(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		shouldError bool
	}{
		{name: "http", url: "http://localhost:8080", shouldError: false},
		{name: "https with path", url: "https://api.example.com/v1", shouldError: false},
		{name: "no scheme", url: "localhost:8080", shouldError: true},
		{name: "ftp", url: "ftp://example.com", shouldError: true},
		{name: "no host", url: "http://", shouldError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIURL(tt.url)
			if tt.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
