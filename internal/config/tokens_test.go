package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTenantAPITokens(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tenant-api-token-system"), []byte("sys-token\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tenant-api-token-prod"), []byte("prod-token"), 0o600))

	tokens, err := LoadTenantAPITokens(dir, []string{"prod", "dev"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"system": "sys-token",
		"prod":   "prod-token",
	}, tokens)
}

func TestLoadTenantAPITokens_EmptyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tenant-api-token-prod"), []byte("  \n"), 0o600))

	_, err := LoadTenantAPITokens(dir, []string{"prod"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
}
