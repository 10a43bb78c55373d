package userconfig

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIURL_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	url, err := GetAPIURL()
	require.NoError(t, err)
	assert.Empty(t, url, "missing config file reads as empty")

	require.NoError(t, SetAPIURL("http://localhost:9000"))

	url, err = GetAPIURL()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", url)
}

func TestLoad_CorruptFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, err := GetConfigDir()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0755))
	path, err := GetConfigPath()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse user config file")
}
