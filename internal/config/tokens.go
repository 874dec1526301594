package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TenantTokenFilePrefix is the file name prefix of per-tenant API token files.
const TenantTokenFilePrefix = "tenant-api-token-"

// LoadTenantAPITokens reads tenant-api-token-<tenant> files from dir for every
// given tenant plus the system tenant. Missing files are skipped.
func LoadTenantAPITokens(dir string, tenants []string) (map[string]string, error) {
	tokens := make(map[string]string, len(tenants)+1)

	for _, t := range append([]string{SystemTenant}, tenants...) {
		path := filepath.Join(dir, TenantTokenFilePrefix+t)
		// #nosec G304
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read token file %s: %w", path, err)
		}

		tok := strings.TrimSpace(string(data))
		if tok == "" {
			return nil, fmt.Errorf("token file %s is empty", path)
		}
		tokens[t] = tok
	}

	return tokens, nil
}
