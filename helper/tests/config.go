package tests

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ConfigNetwork is a network entry of a test deployer config
type ConfigNetwork struct {
	Name        string
	JSONRPC     string
	ChainID     uint64
	AnyCall     string
	ExplorerURL string
}

// WriteConfig writes <dir>/sgld.json with fast receipt polling, the artifacts and journal under dir
// and the given networks, and returns its path
func WriteConfig(t *testing.T, dir, artifactsFormat string, networks ...ConfigNetwork) string {
	t.Helper()

	nets := map[string]interface{}{}

	for _, n := range networks {
		entry := map[string]interface{}{
			"json_rpc": n.JSONRPC,
			"chain_id": n.ChainID,
			"anycall":  n.AnyCall,
		}

		if n.ExplorerURL != "" {
			entry["explorer"] = map[string]string{
				"api_url":     n.ExplorerURL,
				"api_key":     "test-key",
				"browser_url": "https://scan.example",
			}
		}

		nets[n.Name] = entry
	}

	cfg := map[string]interface{}{
		"networks":              nets,
		"artifacts_dir":         filepath.Join(dir, "artifacts"),
		"artifacts_format":      artifactsFormat,
		"journal_path":          filepath.Join(dir, "journal.db"),
		"receipt_timeout":       "5s",
		"receipt_poll_interval": "10ms",
		"log_level":             "ERROR",
	}

	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	path := filepath.Join(dir, "sgld.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	return path
}

// MapEnv returns a lookup function over a fixed set of variables
func MapEnv(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]

		return v, ok
	}
}
